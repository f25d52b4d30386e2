package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/tribune-news/internal/news"
)

type newsQuery struct {
	Region   string `form:"region" binding:"required"`
	Query    string `form:"query"`
	DaysBack int    `form:"days_back,default=7" binding:"min=1,max=30"`
}

type categoryQuery struct {
	Category string `form:"category" binding:"required"`
	Query    string `form:"query"`
	DaysBack int    `form:"days_back,default=7" binding:"min=1,max=30"`
	MaxItems int    `form:"max_items,default=10" binding:"min=1,max=50"`
}

type top3Response struct {
	Titles         []string `json:"titles"`
	Region         string   `json:"region"`
	TotalAvailable int      `json:"total_available"`
}

type newsDetail struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	BriefSummary string `json:"brief_summary"`
	Img          string `json:"img,omitempty"`
	Published    string `json:"published,omitempty"`
}

type detailsResponse struct {
	Details        []newsDetail `json:"details"`
	Region         string       `json:"region"`
	TotalAvailable int          `json:"total_available"`
}

type categoryNewsItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Img         string `json:"img,omitempty"`
	FullContent string `json:"full_content"`
	Published   string `json:"published,omitempty"`
}

type categoryResponse struct {
	NewsItems      []categoryNewsItem `json:"news_items"`
	Category       string             `json:"category"`
	TotalAvailable int                `json:"total_available"`
}

func (s *Server) top3Titles(c *gin.Context) {
	var q newsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !s.regionOK(c, q.Region) {
		return
	}

	view, err := s.svc.QuickView(c.Request.Context(), q.Region, q.Query, q.DaysBack)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, top3Response{
		Titles:         view.Titles,
		Region:         view.Scope,
		TotalAvailable: view.TotalAvailable,
	})
}

func (s *Server) seeMoreDetails(c *gin.Context) {
	var q newsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !s.regionOK(c, q.Region) {
		return
	}

	view, err := s.svc.Details(c.Request.Context(), q.Region, q.Query, q.DaysBack)
	if err != nil {
		abortWithError(c, err)
		return
	}

	details := make([]newsDetail, 0, len(view.Details))
	for _, d := range view.Details {
		details = append(details, newsDetail{
			Title:        d.Title,
			Link:         d.Link,
			BriefSummary: d.BriefSummary,
			Img:          d.Image,
			Published:    formatTime(d.Published),
		})
	}

	c.JSON(http.StatusOK, detailsResponse{
		Details:        details,
		Region:         view.Scope,
		TotalAvailable: view.TotalAvailable,
	})
}

func (s *Server) categoryNews(c *gin.Context) {
	var q categoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !s.categoryOK(c, q.Category) {
		return
	}

	view, err := s.svc.Browse(c.Request.Context(), q.Category, q.Query, q.DaysBack, q.MaxItems)
	if err != nil {
		abortWithError(c, err)
		return
	}

	items := make([]categoryNewsItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, categoryNewsItem{
			Title:       item.Title,
			Link:        item.Link,
			Img:         item.Image,
			FullContent: itemContent(item),
			Published:   formatTime(item.Published),
		})
	}

	c.JSON(http.StatusOK, categoryResponse{
		NewsItems:      items,
		Category:       view.Category,
		TotalAvailable: view.TotalAvailable,
	})
}

// The region and category endpoints each accept only their own scope set; a
// category name on a region endpoint is a client error even though the
// registry could resolve it.
func (s *Server) regionOK(c *gin.Context, region string) bool {
	if s.registry.IsRegion(region) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"detail": fmt.Sprintf("unknown region %q (available: %v)", region, s.registry.Regions()),
	})
	return false
}

func (s *Server) categoryOK(c *gin.Context, category string) bool {
	if s.registry.IsCategory(category) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"detail": fmt.Sprintf("unknown category %q (available: %v)", category, s.registry.Categories()),
	})
	return false
}

func itemContent(item news.Item) string {
	if item.FullContent != "" {
		return item.FullContent
	}
	return item.Summary
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
