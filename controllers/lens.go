package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"

	"github.com/daccred/txlens.attest.so/lens"
	"github.com/daccred/txlens.attest.so/models"
	"github.com/daccred/txlens.attest.so/tokens"
)

// LensController serves transaction reconstructions over HTTP. The caller
// supplies the raw records (already fetched from Horizon/RPC); this layer
// never talks to the ledger itself.
type LensController struct {
	engine   *lens.Engine
	resolver *tokens.Resolver

	mu    sync.Mutex
	stats models.Stats
}

func NewLensController(engine *lens.Engine, resolver *tokens.Resolver) *LensController {
	return &LensController{
		engine:   engine,
		resolver: resolver,
		stats:    models.Stats{StartTime: time.Now()},
	}
}

func (lc *LensController) RegisterRoutes(r *gin.Engine) {
	store := persistence.NewInMemoryStore(time.Minute)

	r.GET("/health", lc.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/transactions/lens", lc.ReconstructTransaction)
		v1.POST("/transactions/balance-changes", lc.BalanceChanges)
		v1.POST("/invocations/tree", lc.InvocationTree)
		v1.GET("/tokens/:contract", lc.GetToken)
		v1.GET("/stats", cache.CachePage(store, time.Minute, lc.GetStats))
	}
}

func (lc *LensController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReconstructTransaction runs the full pipeline: per-operation effects,
// balance changes, deltas and the invocation tree.
func (lc *LensController) ReconstructTransaction(c *gin.Context) {
	var input lens.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result := lc.engine.Reconstruct(c.Request.Context(), input)

	lc.mu.Lock()
	lc.stats.RequestCount++
	lc.stats.EffectsClassified += int64(len(result.BalanceChanges))
	lc.stats.InvocationsBuilt += int64(countInvocations(result.Invocations))
	lc.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (lc *LensController) BalanceChanges(c *gin.Context) {
	var input lens.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result := lc.engine.Reconstruct(c.Request.Context(), input)

	lc.mu.Lock()
	lc.stats.RequestCount++
	lc.stats.EffectsClassified += int64(len(result.BalanceChanges))
	lc.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"balance_changes": result.BalanceChanges,
		"deltas":          result.Deltas,
	}})
}

func (lc *LensController) InvocationTree(c *gin.Context) {
	var input lens.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result := lc.engine.Reconstruct(c.Request.Context(), input)

	lc.mu.Lock()
	lc.stats.RequestCount++
	lc.stats.InvocationsBuilt += int64(countInvocations(result.Invocations))
	lc.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Invocations})
}

func (lc *LensController) GetToken(c *gin.Context) {
	contractID := c.Param("contract")
	if meta, ok := lc.resolver.Cached(contractID); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": meta})
		return
	}
	resolved := lc.resolver.Resolve(c.Request.Context(), []string{contractID})
	meta, ok := resolved[contractID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Token not found"})
		return
	}
	lc.mu.Lock()
	lc.stats.TokensResolved++
	lc.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": meta})
}

func (lc *LensController) GetStats(c *gin.Context) {
	lc.mu.Lock()
	stats := lc.stats
	lc.mu.Unlock()
	stats.TokensResolved = int64(lc.resolver.CacheSize())
	stats.LastUpdateTime = time.Now()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func countInvocations(roots []*models.Invocation) int {
	count := 0
	for _, inv := range roots {
		count += 1 + countInvocations(inv.Children)
	}
	return count
}
