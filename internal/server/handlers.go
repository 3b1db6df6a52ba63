package server

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Benjamin-Hogan/restload/internal/config"
	"github.com/Benjamin-Hogan/restload/internal/engine"
	"github.com/Benjamin-Hogan/restload/internal/openapi"
	"github.com/Benjamin-Hogan/restload/internal/store"
	"github.com/Benjamin-Hogan/restload/internal/task"
	"github.com/gin-gonic/gin"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.opts.Version})
}

func (s *Server) listConfigs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configs": s.opts.Registry.Names(),
		"active":  s.opts.Registry.ActiveName(),
	})
}

func (s *Server) addConfig(c *gin.Context) {
	var in config.API
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := s.opts.Registry.Get(in.Name); ok {
		c.JSON(http.StatusConflict, gin.H{"error": "config " + strconv.Quote(in.Name) + " already exists"})
		return
	}
	if err := s.opts.Registry.Add(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.saveRegistry()
	c.JSON(http.StatusCreated, gin.H{"name": in.Name})
}

func (s *Server) removeConfig(c *gin.Context) {
	if err := s.opts.Registry.Remove(c.Param("name")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.saveRegistry()
	c.Status(http.StatusNoContent)
}

func (s *Server) activateConfig(c *gin.Context) {
	name := c.Param("name")
	if err := s.opts.Registry.Use(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.saveRegistry()
	c.JSON(http.StatusOK, gin.H{"active": name})
}

func (s *Server) listEndpoints(c *gin.Context) {
	name := c.Param("name")
	cfg, ok := s.opts.Registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "config " + strconv.Quote(name) + " not found"})
		return
	}
	if strings.TrimSpace(cfg.OpenAPISpecPath) == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "config " + strconv.Quote(name) + " has no openapi spec"})
		return
	}
	doc, err := openapi.Load(cfg.OpenAPISpecPath)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": name, "document": doc})
}

// adhocRequest is the POST /api/request payload: one task without the
// batch scaffolding.
type adhocRequest struct {
	Config  string            `json:"config"`
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Params  map[string]string `json:"params"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

func (s *Server) sendRequest(c *gin.Context) {
	var in adhocRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Config == "" {
		in.Config = s.opts.Registry.ActiveName()
	}
	if in.Config == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no config given and no active config"})
		return
	}

	batch := &task.Batch{Tasks: []*task.Task{{
		ConfigName: in.Config,
		Method:     in.Method,
		Path:       in.Path,
		Params:     task.FromMap(in.Params),
		Headers:    task.FromMap(in.Headers),
		Body:       in.Body,
	}}}

	eng := engine.New(s.opts.Registry)
	rr, err := eng.Run(c.Request.Context(), batch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rr.Results[0])
}

// runRequest is the POST /api/run payload.
type runRequest struct {
	Tasks       []*task.Task `json:"tasks"`
	StopOnError bool         `json:"stopOnError"`
	Label       string       `json:"label"`
}

func (s *Server) runBatch(c *gin.Context) {
	var in runRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(in.Tasks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch: missing tasks list"})
		return
	}

	eng := engine.New(s.opts.Registry)
	eng.StopOnError = in.StopOnError
	rr, err := eng.Run(c.Request.Context(), &task.Batch{Tasks: in.Tasks})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := gin.H{
		"total":      rr.Total,
		"successful": rr.Successful,
		"results":    rr.Results,
	}
	if s.opts.Store != nil {
		id, err := s.opts.Store.SaveRun(c.Request.Context(), &store.RunRecord{
			Label:      in.Label,
			Total:      rr.Total,
			Successful: rr.Successful,
			Halted:     rr.State == engine.RunHalted,
			Results:    rr.Results,
		})
		if err != nil {
			s.logger.Warn("run not persisted", "error", err.Error())
		} else {
			out["id"] = id
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listHistory(c *gin.Context) {
	if s.opts.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history store disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := s.opts.Store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getHistory(c *gin.Context) {
	if s.opts.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history store disabled"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	rec, err := s.opts.Store.GetRun(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// saveRegistry persists registry mutations when the registry is backed
// by a file. Failures are logged, not surfaced: the in-memory change
// already took effect.
func (s *Server) saveRegistry() {
	if s.opts.Registry.Path() == "" {
		return
	}
	if err := s.opts.Registry.Save(); err != nil {
		s.logger.Warn("registry not saved", "error", err.Error())
	}
}
