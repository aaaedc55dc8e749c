package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"miniwiki/internal/archive"
	"miniwiki/internal/domain"
	"miniwiki/internal/repository"
	"miniwiki/internal/service"
	"miniwiki/internal/storage"
)

const sessionCookie = "session"

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts service.AccountService
	pages    service.PageService
	archiver archive.Manager
	storage  storage.Service
	bucket   string
	logger   *logrus.Logger
}

func NewHandler(accounts service.AccountService, pages service.PageService, archiver archive.Manager, store storage.Service, bucket string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		accounts: accounts,
		pages:    pages,
		archiver: archiver,
		storage:  store,
		bucket:   bucket,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/signup", h.signup)
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)
		api.GET("/me", h.authRequired(), h.me)

		api.GET("/pages/*url", h.readPage)
		api.PUT("/pages/*url", h.authRequired(), h.writePage)
		api.GET("/history/*url", h.authRequired(), h.pageHistory)

		api.GET("/archive/objects", h.listArchiveObjects)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired resolves the session cookie to an account and aborts with 401
// when it is absent or does not verify. An invalid session is "not logged
// in", never a server failure.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := h.sessionAccount(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		c.Set("accountID", accountID)
		c.Next()
	}
}

// sessionAccount reports the account behind the request's session cookie, if
// any. It verifies the account still exists so a token for a vanished row
// does not authenticate.
func (h *Handler) sessionAccount(c *gin.Context) (int64, bool) {
	value, err := c.Cookie(sessionCookie)
	if err != nil || value == "" {
		return 0, false
	}
	accountID, err := h.accounts.SessionAccountID(value)
	if err != nil {
		return 0, false
	}
	if _, err := h.accounts.GetByID(c.Request.Context(), accountID); err != nil {
		return 0, false
	}
	return accountID, true
}

func (h *Handler) setSessionCookie(c *gin.Context, accountID int64) error {
	value, err := h.accounts.SessionCookieValue(accountID)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookie, value, 0, "/", "", false, true)
	return nil
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Verify   string `json:"verify"`
	Email    string `json:"email"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, fieldErrs, err := h.accounts.Signup(c.Request.Context(), req.Username, req.Password, req.Verify, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"field_errors": fieldErrs})
		return
	}

	if err := h.setSessionCookie(c, account.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, accountToResponse(account))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, token, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser), errors.Is(err, service.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"account": accountToResponse(account),
		"token":   token,
	})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) me(c *gin.Context) {
	accountID := c.GetInt64("accountID")
	account, err := h.accounts.GetByID(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, accountToResponse(account))
}

func (h *Handler) readPage(c *gin.Context) {
	url := c.Param("url")

	version := domain.LatestRevision
	if v := c.Query("v"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
			return
		}
		version = parsed
	}

	content, err := h.pages.ReadPage(c.Request.Context(), url, version)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// A logged-in reader may create the page, so tell the UI the
			// miss is editable.
			_, loggedIn := h.sessionAccount(c)
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found", "editable": loggedIn})
		case errors.Is(err, domain.ErrRevisionOutOfRange):
			c.JSON(http.StatusNotFound, gin.H{"error": "revision out of range"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "content": content})
}

type writePageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) writePage(c *gin.Context) {
	url := c.Param("url")

	var req writePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pages.WritePage(c.Request.Context(), url, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.archiver != nil {
		index := len(page.Revisions) - 1
		if err := h.archiver.Enqueue(url, index, req.Content); err != nil {
			h.logger.Warnf("enqueue archive for %s: %v", url, err)
		}
	}

	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) pageHistory(c *gin.Context) {
	url := c.Param("url")

	revisions, err := h.pages.History(c.Request.Context(), url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]RevisionResponse, len(revisions))
	for i := range revisions {
		resp[i] = revisionToResponse(i, revisions[i])
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "revisions": resp})
}

func (h *Handler) listArchiveObjects(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive not configured"})
		return
	}

	prefix := c.Query("prefix")
	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

type AccountResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

type RevisionResponse struct {
	Version    int    `json:"version"`
	Content    string `json:"content"`
	ModifiedAt string `json:"modified_at"`
}

type PageResponse struct {
	URL       string             `json:"url"`
	CreatedAt string             `json:"created_at"`
	Revisions []RevisionResponse `json:"revisions"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func accountToResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
}

func revisionToResponse(index int, rev domain.Revision) RevisionResponse {
	return RevisionResponse{
		Version:    index,
		Content:    rev.Content,
		ModifiedAt: rev.ModifiedAt.Format(time.RFC3339),
	}
}

func pageToResponse(page *domain.WikiPage) PageResponse {
	resp := PageResponse{
		URL:       page.URL,
		CreatedAt: page.CreatedAt.Format(time.RFC3339),
		Revisions: make([]RevisionResponse, len(page.Revisions)),
	}
	for i := range page.Revisions {
		resp.Revisions[i] = revisionToResponse(i, page.Revisions[i])
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
