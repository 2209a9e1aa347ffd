package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/collections"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	authorsRepo "github.com/mrlokans/bookshelf/internal/database/authors"
	booksRepo "github.com/mrlokans/bookshelf/internal/database/books"
	collectionsRepo "github.com/mrlokans/bookshelf/internal/database/collections"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

const testUserHeader = "X-Test-User"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

// setupTestServer mounts the collection and catalog controllers over a real
// SQLite database. The requester is taken from the X-Test-User header.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.UseJSONFieldNames()

	dbPath := "./test_http_" + t.Name() + ".db"
	db, err := database.NewDatabase(config.Database{Driver: config.DriverSQLite, Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	books := booksRepo.NewRepository(db.DB)
	authors := authorsRepo.NewRepository(db.DB)
	collectionService := collections.NewService(collectionsRepo.NewRepository(db.DB), books, authors)
	catalogService := catalog.NewService(books, authors, nil, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.GetHeader(testUserHeader), 10, 32)
		c.Set(auth.ContextKeyUserID, uint(id))
		c.Next()
	})
	NewCollectionsController(collectionService).RegisterRoutes(router)
	NewCatalogController(catalogService).RegisterRoutes(router)

	return &testServer{router: router, db: db.DB}
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			var err error
			raw, err = json.Marshal(b)
			require.NoError(t, err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(testUserHeader, strconv.FormatUint(uint64(userID), 10))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedCollection(t *testing.T, id, owner uint) {
	t.Helper()
	require.NoError(t, s.db.Create(&entities.Collection{ID: id, UserID: owner, Name: "Favourites"}).Error)
}

func (s *testServer) seedBooks(t *testing.T, owner uint, ids ...uint) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, s.db.Create(&entities.Book{
			ID: id, UserID: owner, Title: "Book " + strconv.Itoa(int(id)), Author: "Author", Pages: 100,
			Type: entities.BookTypePhysical, Status: entities.ReadingStatusReading,
		}).Error)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCollections_AddBook(t *testing.T) {
	s := setupTestServer(t)
	s.seedCollection(t, 5, 1)
	s.seedBooks(t, 1, 10)

	w := s.do(t, http.MethodPost, "/api/collections/5/books/10", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp membershipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(5), resp.CollectionID)
	assert.Equal(t, uint(10), resp.BookID)
	assert.True(t, resp.Added)

	t.Run("second add is a no-op", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/collections/5/books/10", 1, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp membershipResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Added)
	})

	t.Run("unknown book", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/collections/5/books/999", 1, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/collections/5/books/abc", 1, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid bookId", decodeError(t, w).Error)
	})

	t.Run("missing collection", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/collections/404/books/10", 1, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "collection not found", decodeError(t, w).Error)
	})
}

func TestCollections_NonOwnerLooksLikeMissing(t *testing.T) {
	s := setupTestServer(t)
	s.seedCollection(t, 5, 1)
	s.seedBooks(t, 1, 10)
	s.seedBooks(t, 2, 20)

	requests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/collections/5", nil},
		{http.MethodPut, "/api/collections/5", map[string]string{"name": "Mine now"}},
		{http.MethodDelete, "/api/collections/5", nil},
		{http.MethodPost, "/api/collections/5/books/20", nil},
		{http.MethodDelete, "/api/collections/5/books/10", nil},
		{http.MethodPost, "/api/collections/5/authors/1", nil},
		{http.MethodDelete, "/api/collections/5/authors/1", nil},
		{http.MethodPut, "/api/collections/5/books/reorder", map[string]any{
			"books": []map[string]any{{"bookId": 10, "displayOrder": 1}},
		}},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := s.do(t, r.method, r.path, 2, r.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "collection not found", decodeError(t, w).Error)
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&entities.CollectionBook{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCollections_RemoveBook(t *testing.T) {
	s := setupTestServer(t)
	s.seedCollection(t, 5, 1)
	s.seedBooks(t, 1, 10)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/collections/5/books/10", 1, nil).Code)

	w := s.do(t, http.MethodDelete, "/api/collections/5/books/10", 1, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/collections/5/books/10", 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "membership not found", decodeError(t, w).Error)
}

func TestCollections_Authors(t *testing.T) {
	s := setupTestServer(t)
	s.seedCollection(t, 5, 1)
	require.NoError(t, s.db.Create(&entities.Author{ID: 3, UserID: 1, Name: "Ursula K. Le Guin"}).Error)

	w := s.do(t, http.MethodPost, "/api/collections/5/authors/3", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/collections/5/authors/42", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/collections/5", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view collections.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Authors, 1)
	assert.Equal(t, "Ursula K. Le Guin", view.Authors[0].Name)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/collections/5/authors/3", 1, nil).Code)
	w = s.do(t, http.MethodDelete, "/api/collections/5/authors/3", 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "membership not found", decodeError(t, w).Error)
}

func TestCollections_Reorder(t *testing.T) {
	s := setupTestServer(t)
	s.seedCollection(t, 5, 1)
	s.seedBooks(t, 1, 10, 11, 12)

	for _, id := range []string{"10", "11", "12"} {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/collections/5/books/"+id, 1, nil).Code)
	}

	body := `{"books":[{"bookId":12,"displayOrder":1},{"bookId":10,"displayOrder":2},{"bookId":11,"displayOrder":2}]}`
	w := s.do(t, http.MethodPut, "/api/collections/5/books/reorder", 1, body)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/collections/5", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view collections.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, []uint{12, 10, 11}, view.BookIDs())
	assert.Equal(t, 3, view.BookCount)

	t.Run("empty list", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/collections/5/books/reorder", 1, `{"books":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing book id", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/collections/5/books/reorder", 1, `{"books":[{"displayOrder":3}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, CodeValidation, resp.Code)
		details, ok := resp.Details.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "books[0].bookId")
	})

	t.Run("duplicate book ids", func(t *testing.T) {
		body := `{"books":[{"bookId":10,"displayOrder":1},{"bookId":10,"displayOrder":2}]}`
		w := s.do(t, http.MethodPut, "/api/collections/5/books/reorder", 1, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/collections/5/books/reorder", 1, `{"books":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeError(t, w).Error)
	})
}

func TestCollections_CRUD(t *testing.T) {
	s := setupTestServer(t)
	s.seedBooks(t, 1, 10)

	w := s.do(t, http.MethodPost, "/api/collections", 1, map[string]string{"name": "Summer reading"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created collections.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Summer reading", created.Name)
	assert.Equal(t, uint(1), created.UserID)

	path := "/api/collections/" + strconv.Itoa(int(created.ID))

	w = s.do(t, http.MethodPost, "/api/collections", 1, map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, path, 1, map[string]string{"name": "Winter reading"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path+"/books/10", 1, nil).Code)

	w = s.do(t, http.MethodGet, "/api/collections", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Collections []collections.View `json:"collections"`
		Count       int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Winter reading", list.Collections[0].Name)

	w = s.do(t, http.MethodGet, "/api/collections", 2, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Zero(t, list.Count)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, 1, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, 1, nil).Code)

	var count int64
	require.NoError(t, s.db.Model(&entities.CollectionBook{}).Count(&count).Error)
	assert.Zero(t, count)
}
