package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/collections"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CollectionsController serves collection CRUD and membership routes.
type CollectionsController struct {
	service *collections.Service
}

func NewCollectionsController(service *collections.Service) *CollectionsController {
	return &CollectionsController{service: service}
}

// RegisterRoutes mounts the controller under /api/collections.
func (cc *CollectionsController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/collections")
	group.GET("", cc.List)
	group.POST("", cc.Create)
	group.GET("/:id", cc.Get)
	group.PUT("/:id", cc.Update)
	group.DELETE("/:id", cc.Delete)

	group.PUT("/:id/books/reorder", cc.ReorderBooks)
	group.POST("/:id/books/:bookId", cc.AddBook)
	group.DELETE("/:id/books/:bookId", cc.RemoveBook)
	group.POST("/:id/authors/:authorId", cc.AddAuthor)
	group.DELETE("/:id/authors/:authorId", cc.RemoveAuthor)
}

type collectionRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Description  string `json:"description" binding:"max=10000"`
	ProfileImage string `json:"profileImage" binding:"omitempty,max=2048"`
}

func (r collectionRequest) input() collections.Input {
	return collections.Input{
		Name:         r.Name,
		Description:  r.Description,
		ProfileImage: r.ProfileImage,
	}
}

type reorderRequest struct {
	Books []bookOrderRequest `json:"books" binding:"required,min=1,dive"`
}

type bookOrderRequest struct {
	BookID       uint `json:"bookId" binding:"required"`
	DisplayOrder int  `json:"displayOrder"`
}

type membershipResponse struct {
	CollectionID uint `json:"collectionId"`
	BookID       uint `json:"bookId,omitempty"`
	AuthorID     uint `json:"authorId,omitempty"`
	Added        bool `json:"added"`
}

// List handles GET /api/collections
func (cc *CollectionsController) List(c *gin.Context) {
	views, err := cc.service.ListCollections(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list collections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": views, "count": len(views)})
}

// Create handles POST /api/collections
func (cc *CollectionsController) Create(c *gin.Context) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := cc.service.CreateCollection(c.Request.Context(), GetUserID(c), req.input())
	if err != nil {
		respondCollectionError(c, err, "create collection")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get handles GET /api/collections/:id
func (cc *CollectionsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := cc.service.GetCollection(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		respondCollectionError(c, err, "get collection")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update handles PUT /api/collections/:id
func (cc *CollectionsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := cc.service.UpdateCollection(c.Request.Context(), id, GetUserID(c), req.input())
	if err != nil {
		respondCollectionError(c, err, "update collection")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/collections/:id
func (cc *CollectionsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.service.DeleteCollection(c.Request.Context(), id, GetUserID(c)); err != nil {
		respondCollectionError(c, err, "delete collection")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddBook handles POST /api/collections/:id/books/:bookId
func (cc *CollectionsController) AddBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	added, err := cc.service.AddBook(c.Request.Context(), id, bookID, GetUserID(c))
	if err != nil {
		respondCollectionError(c, err, "add book to collection")
		return
	}
	c.JSON(http.StatusOK, membershipResponse{CollectionID: id, BookID: bookID, Added: added})
}

// RemoveBook handles DELETE /api/collections/:id/books/:bookId
func (cc *CollectionsController) RemoveBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := cc.service.RemoveBook(c.Request.Context(), id, bookID, GetUserID(c)); err != nil {
		respondCollectionError(c, err, "remove book from collection")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddAuthor handles POST /api/collections/:id/authors/:authorId
func (cc *CollectionsController) AddAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	authorID, ok := parseIDParam(c, "authorId")
	if !ok {
		return
	}

	added, err := cc.service.AddAuthor(c.Request.Context(), id, authorID, GetUserID(c))
	if err != nil {
		respondCollectionError(c, err, "add author to collection")
		return
	}
	c.JSON(http.StatusOK, membershipResponse{CollectionID: id, AuthorID: authorID, Added: added})
}

// RemoveAuthor handles DELETE /api/collections/:id/authors/:authorId
func (cc *CollectionsController) RemoveAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	authorID, ok := parseIDParam(c, "authorId")
	if !ok {
		return
	}

	if err := cc.service.RemoveAuthor(c.Request.Context(), id, authorID, GetUserID(c)); err != nil {
		respondCollectionError(c, err, "remove author from collection")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderBooks handles PUT /api/collections/:id/books/reorder
func (cc *CollectionsController) ReorderBooks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	orders := make([]entities.BookOrder, 0, len(req.Books))
	for _, b := range req.Books {
		orders = append(orders, entities.BookOrder{BookID: b.BookID, DisplayOrder: b.DisplayOrder})
	}

	if err := cc.service.ReorderBooks(c.Request.Context(), id, GetUserID(c), orders); err != nil {
		respondCollectionError(c, err, "reorder collection books")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondCollectionError maps service errors to responses. A collection the
// requester does not own answers exactly like one that does not exist.
func respondCollectionError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, collections.ErrNotMember):
		respondNotFound(c, "membership")
	case errors.Is(err, collections.ErrNotFound), errors.Is(err, collections.ErrDenied):
		respondNotFound(c, "collection")
	case errors.Is(err, collections.ErrInvalidReference):
		respondBadRequest(c, err.Error())
	case errors.Is(err, collections.ErrInvalidInput):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
