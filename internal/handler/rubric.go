package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"home-valuation/internal/model"
	"home-valuation/internal/rubric"
	"home-valuation/internal/service"
)

// DistrictLister lists known districts and their base prices
type DistrictLister interface {
	List(ctx context.Context) []model.DistrictPrice
	DefaultBasePrice() float64
}

// RubricHandler serves the reference data behind an evaluation
type RubricHandler struct {
	catalog   *rubric.Catalog
	districts DistrictLister
}

// NewRubricHandler creates a new rubric handler
func NewRubricHandler(catalog *rubric.Catalog, districts DistrictLister) *RubricHandler {
	return &RubricHandler{catalog: catalog, districts: districts}
}

// Rubric handles GET /api/v1/rubric
func (h *RubricHandler) Rubric(c *gin.Context) {
	resp := model.RubricResponse{}
	for _, cat := range rubric.Categories() {
		rc := model.RubricCategory{
			Name:   string(cat),
			Title:  cat.Title(),
			Weight: service.Weights[cat],
		}
		for _, g := range h.catalog.Groups(cat) {
			rg := model.RubricGroup{Name: g.Name}
			for _, item := range g.Items {
				rg.Items = append(rg.Items, model.RubricItem{
					ID:    item.ID,
					Label: item.Label,
					Key:   item.Key(),
					Min:   item.Min,
					Max:   item.Max,
				})
			}
			rc.Groups = append(rc.Groups, rg)
		}
		resp.Categories = append(resp.Categories, rc)
	}

	c.JSON(http.StatusOK, resp)
}

// Districts handles GET /api/v1/districts
func (h *RubricHandler) Districts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"districts":        h.districts.List(c.Request.Context()),
		"defaultBasePrice": h.districts.DefaultBasePrice(),
	})
}
