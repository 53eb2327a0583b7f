package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	return r
}

func TestRequestIDMiddleware_GeneratesIDs(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	reqID := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, reqID)
	assert.Equal(t, reqID, w.Header().Get(HeaderCorrelationID))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, reqID, body.Metadata.RequestID)
	assert.Nil(t, body.Error)
}

func TestRequestIDMiddleware_EchoesCorrelationID(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrGroupNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "corr-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "corr-123", w.Header().Get(HeaderCorrelationID))
	assert.NotEqual(t, "corr-123", w.Header().Get(HeaderRequestID))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrGroupNotFound, body.Error.Code)
	assert.Equal(t, GetMessage(ErrGroupNotFound), body.Error.Message)
	assert.Equal(t, "corr-123", body.Metadata.CorrelationID)
}

func TestFailWithFields(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"name": "bad"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"name": "bad"}, body.Error.Fields)
}

func TestList_EmptyIsArray(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) { List[int](c, nil) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetMessage_UnknownCode(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("NOPE")))
}
