package gateway

import (
	"fmt"
	"net/http"

	"github.com/ValentinKolb/kvgate/lib/pipeline"
	"github.com/ValentinKolb/kvgate/lib/service"
	"github.com/gin-gonic/gin"
)

// Fixed response bodies
const (
	pingError      = "ping error"
	setOK          = "set ok"
	setError       = "set error"
	deleteError    = "delete error"
	invalidRequest = "invalid request"
	getErrorValue  = "error"
)

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// routes is the route table of the gateway
func (g *Gateway) routes() []route {
	return []route{
		{http.MethodPost, "/ping", g.handlePing},
		{http.MethodPost, "/get/:key", g.handleGetItem},
		{http.MethodPost, "/set", g.handleSetItem},
		{http.MethodPost, "/delete", g.handleDeleteItem},
		{http.MethodGet, "/health", g.handleHealth},
		{http.MethodGet, "/metrics", g.handleMetrics},
	}
}

// --------------------------------------------------------------------------
// Request / Response bodies
// --------------------------------------------------------------------------

type pingParams struct {
	Message *string `json:"message" form:"message"`
}

type setParams struct {
	Key   *string `json:"key" form:"key" binding:"required"`
	Value *string `json:"value" form:"value" binding:"required"`
}

type deleteParams struct {
	Keys []string `json:"keys" form:"keys" binding:"required"`
}

type getItemResult struct {
	Value string `json:"value"`
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (g *Gateway) handlePing(c *gin.Context) {
	var params pingParams
	if !g.bind(c, &params, true) {
		return
	}

	resp, err := pipeline.Call[*service.PingResponse](c.Request.Context(), g.handler, &service.PingRequest{Message: params.Message})
	if err != nil {
		Logger.Errorf("ping failed: %v", err)
		c.String(http.StatusInternalServerError, pingError)
		return
	}
	c.String(http.StatusOK, resp.Message)
}

func (g *Gateway) handleGetItem(c *gin.Context) {
	resp, err := pipeline.Call[*service.GetItemResponse](c.Request.Context(), g.handler, &service.GetItemRequest{Key: c.Param("key")})
	if err != nil {
		Logger.Errorf("get %q failed: %v", c.Param("key"), err)
		c.JSON(http.StatusInternalServerError, getItemResult{Value: getErrorValue})
		return
	}
	c.JSON(http.StatusOK, getItemResult{Value: resp.Value})
}

func (g *Gateway) handleSetItem(c *gin.Context) {
	var params setParams
	if !g.bind(c, &params, false) {
		return
	}

	_, err := pipeline.Call[*service.SetItemResponse](c.Request.Context(), g.handler, &service.SetItemRequest{
		KV: service.KV{Key: *params.Key, Value: *params.Value},
	})
	if err != nil {
		Logger.Errorf("set %q failed: %v", *params.Key, err)
		c.String(http.StatusInternalServerError, setError)
		return
	}
	c.String(http.StatusOK, setOK)
}

func (g *Gateway) handleDeleteItem(c *gin.Context) {
	var params deleteParams
	if !g.bind(c, &params, false) {
		return
	}

	resp, err := pipeline.Call[*service.DeleteItemResponse](c.Request.Context(), g.handler, &service.DeleteItemRequest{Keys: params.Keys})
	if err != nil {
		Logger.Errorf("delete of %d keys failed: %v", len(params.Keys), err)
		c.String(http.StatusInternalServerError, deleteError)
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("delete %d items", resp.Count))
}

func (g *Gateway) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (g *Gateway) handleMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.Status(http.StatusOK)
	g.metrics.WritePrometheus(c.Writer)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// bind decodes a JSON or form body (and the query) into obj.
// If optional is set, a request without a body is accepted as is.
// On failure a 400 response is written and false is returned.
func (g *Gateway) bind(c *gin.Context, obj any, optional bool) bool {
	var err error
	if optional && c.Request.ContentLength == 0 {
		// no body, only the query can carry parameters
		err = c.ShouldBindQuery(obj)
	} else {
		err = c.ShouldBind(obj)
	}
	if err != nil {
		Logger.Warningf("invalid %s request: %v", c.FullPath(), err)
		c.String(http.StatusBadRequest, invalidRequest)
		return false
	}
	return true
}
