// internal/status/server.go
package status

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"typings-worker/internal/installer"
)

// SetupRouter construit le endpoint HTTP local de statut du worker.
// C'est une aide de diagnostic pour l'opérateur, pas une surface host:
// il n'est servi que si une adresse d'écoute est configurée.
func SetupRouter(proc *installer.Process) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handlers := NewHandlers(proc)

	r.GET("/health", handlers.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/registry", handlers.Registry)
		api.GET("/stats", handlers.Stats)
	}

	return r
}

// Serve démarre le endpoint de statut sur addr, dans sa propre goroutine
// côté appelant. Une erreur de service est journalisée, jamais fatale: le
// worker continue de servir le host sans endpoint de statut.
func Serve(proc *installer.Process, addr string) {
	if err := SetupRouter(proc).Run(addr); err != nil {
		log.Printf("Status endpoint stopped: %v", err)
	}
}

type Handlers struct {
	proc *installer.Process
}

func NewHandlers(proc *installer.Process) *Handlers {
	return &Handlers{proc: proc}
}

// Health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "typings-worker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Registry expose la taille et le contenu du snapshot chargé au bootstrap
func (h *Handlers) Registry(c *gin.Context) {
	snapshot := h.proc.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"count": len(snapshot),
		"names": snapshot.Names(),
	})
}

// Stats expose les compteurs cumulés des invocations npm
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"installs":  h.proc.NpmStats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
