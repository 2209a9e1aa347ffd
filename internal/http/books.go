package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CatalogController serves the requester's books and authors.
type CatalogController struct {
	service *catalog.Service
}

func NewCatalogController(service *catalog.Service) *CatalogController {
	return &CatalogController{service: service}
}

func (cc *CatalogController) RegisterRoutes(router gin.IRouter) {
	books := router.Group("/api/books")
	books.GET("", cc.ListBooks)
	books.POST("", cc.CreateBook)
	books.GET("/:id", cc.GetBook)
	books.PUT("/:id", cc.UpdateBook)
	books.DELETE("/:id", cc.DeleteBook)
	books.GET("/:id/authors", cc.ListBookAuthors)
	books.POST("/:id/authors/:authorId", cc.AddBookAuthor)
	books.DELETE("/:id/authors/:authorId", cc.RemoveBookAuthor)

	authors := router.Group("/api/authors")
	authors.GET("", cc.ListAuthors)
	authors.POST("", cc.CreateAuthor)
	authors.GET("/:id", cc.GetAuthor)
	authors.PUT("/:id", cc.UpdateAuthor)
	authors.DELETE("/:id", cc.DeleteAuthor)
}

type bookRequest struct {
	Title  string `json:"title" binding:"required,max=200"`
	Author string `json:"author" binding:"required,max=100"`
	Genre  string `json:"genre" binding:"required,max=50"`
	Pages  int    `json:"pages" binding:"required,min=1"`
	Type   string `json:"type" binding:"required,oneof=physical digital"`
	Status string `json:"status" binding:"required,oneof=read reading not-read abandoned"`
}

func (r bookRequest) input() catalog.BookInput {
	return catalog.BookInput{
		Title:  r.Title,
		Author: r.Author,
		Genre:  r.Genre,
		Pages:  r.Pages,
		Type:   entities.BookType(r.Type),
		Status: entities.ReadingStatus(r.Status),
	}
}

// ListBooks handles GET /api/books
func (cc *CatalogController) ListBooks(c *gin.Context) {
	books, err := cc.service.ListBooks(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// CreateBook handles POST /api/books
func (cc *CatalogController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	book, err := cc.service.CreateBook(c.Request.Context(), GetUserID(c), req.input())
	if err != nil {
		respondInternalError(c, err, "create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

// GetBook handles GET /api/books/:id
func (cc *CatalogController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.service.GetBook(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		respondCatalogError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook handles PUT /api/books/:id
func (cc *CatalogController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	book, err := cc.service.UpdateBook(c.Request.Context(), id, GetUserID(c), req.input())
	if err != nil {
		respondCatalogError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/:id. The book leaves every collection.
func (cc *CatalogController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.service.DeleteBook(c.Request.Context(), id, GetUserID(c)); err != nil {
		respondCatalogError(c, err, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBookAuthors handles GET /api/books/:id/authors
func (cc *CatalogController) ListBookAuthors(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	authors, err := cc.service.ListBookAuthors(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		respondCatalogError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}

// AddBookAuthor handles POST /api/books/:id/authors/:authorId
func (cc *CatalogController) AddBookAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	authorID, ok := parseIDParam(c, "authorId")
	if !ok {
		return
	}

	added, err := cc.service.AddBookAuthor(c.Request.Context(), id, authorID, GetUserID(c))
	if err != nil {
		respondCatalogError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookId": id, "authorId": authorID, "added": added})
}

// RemoveBookAuthor handles DELETE /api/books/:id/authors/:authorId
func (cc *CatalogController) RemoveBookAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	authorID, ok := parseIDParam(c, "authorId")
	if !ok {
		return
	}

	if err := cc.service.RemoveBookAuthor(c.Request.Context(), id, authorID, GetUserID(c)); err != nil {
		respondCatalogError(c, err, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondCatalogError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, catalog.ErrNotCredited):
		respondNotFound(c, "author credit")
	case errors.Is(err, catalog.ErrNotFound):
		respondNotFound(c, resource)
	case errors.Is(err, catalog.ErrInvalidReference):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, resource)
	}
}
