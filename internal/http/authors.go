package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

type authorRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Nationality  string `json:"nationality" binding:"max=100"`
	Bio          string `json:"bio" binding:"max=10000"`
	ProfileImage string `json:"profileImage" binding:"omitempty,max=2048"`
}

func (r authorRequest) input() catalog.AuthorInput {
	return catalog.AuthorInput{
		Name:         r.Name,
		Nationality:  r.Nationality,
		Bio:          r.Bio,
		ProfileImage: r.ProfileImage,
	}
}

// ListAuthors handles GET /api/authors
func (cc *CatalogController) ListAuthors(c *gin.Context) {
	authors, err := cc.service.ListAuthors(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}

// CreateAuthor handles POST /api/authors
func (cc *CatalogController) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	author, err := cc.service.CreateAuthor(c.Request.Context(), GetUserID(c), req.input())
	if err != nil {
		respondInternalError(c, err, "create author")
		return
	}
	c.JSON(http.StatusCreated, author)
}

// GetAuthor handles GET /api/authors/:id
func (cc *CatalogController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := cc.service.GetAuthor(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		respondCatalogError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// UpdateAuthor handles PUT /api/authors/:id
func (cc *CatalogController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	author, err := cc.service.UpdateAuthor(c.Request.Context(), id, GetUserID(c), req.input())
	if err != nil {
		respondCatalogError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// DeleteAuthor handles DELETE /api/authors/:id
func (cc *CatalogController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.service.DeleteAuthor(c.Request.Context(), id, GetUserID(c)); err != nil {
		respondCatalogError(c, err, "author")
		return
	}
	c.Status(http.StatusNoContent)
}
