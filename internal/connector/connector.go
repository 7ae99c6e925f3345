// Package connector maps web file manager commands onto volumes.
//
// Every command reads a typed argument struct through an explicit parse
// function, resolves tokens through the volume registry, and answers with a
// JSON object. Failures are reported as {"error": code} with HTTP 200 so the
// client can show them, except malformed requests, which get 400.
package connector

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/finder/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/finder/internal/volume"
)

// Options configures the connector.
type Options struct {
	UploadMaxSize  int64
	MaxUploadFiles int
	SearchTimeout  time.Duration
	// MaxMemory bounds the multipart bytes held in memory before spilling
	// to temporary files.
	MaxMemory int64
}

func (o Options) withDefaults() Options {
	if o.MaxUploadFiles <= 0 {
		o.MaxUploadFiles = 20
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 10 * time.Second
	}
	if o.MaxMemory <= 0 {
		o.MaxMemory = 32 << 20
	}
	return o
}

// request is one parsed connector call.
type request struct {
	cmd    string
	params params
	files  []*multipart.FileHeader
}

type handler func(c *Connector, ctx context.Context, r *request) (gin.H, error)

// commands is the dispatch table, keyed by lower-case command name.
var commands = map[string]handler{
	"open":   (*Connector).open,
	"tree":   (*Connector).tree,
	"info":   (*Connector).info,
	"mkdir":  (*Connector).mkdir,
	"mkfile": (*Connector).mkfile,
	"rename": (*Connector).rename,
	"rm":     (*Connector).rm,
	"upload": (*Connector).upload,
	"search": (*Connector).search,
}

// Commands returns the supported command names.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

// Connector serves commands against a registry of volumes.
type Connector struct {
	registry *volume.Registry
	opts     Options
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// New creates a connector. metrics may be nil.
func New(registry *volume.Registry, opts Options, log *logging.Logger, metrics *monitoring.Metrics) *Connector {
	if log == nil {
		log = logging.NewNop()
	}
	return &Connector{
		registry: registry,
		opts:     opts.withDefaults(),
		log:      log.Named("connector"),
		metrics:  metrics,
	}
}

// Register mounts the connector on GET and POST path.
func (c *Connector) Register(routes gin.IRoutes, path string) {
	routes.GET(path, c.Handle)
	routes.POST(path, c.Handle)
}

// Handle is the gin handler for a connector request.
func (c *Connector) Handle(ctx *gin.Context) {
	req, err := c.parseRequest(ctx.Request)
	if err != nil {
		c.finish(ctx, "", nil, err)
		return
	}
	if req.cmd == "" {
		c.finish(ctx, "", nil, badRequest(codeCmdRequired))
		return
	}

	h, ok := commands[req.cmd]
	if !ok {
		c.finish(ctx, "unknown", nil, badRequest(codeUnknownCmd))
		return
	}

	resp, err := h(c, ctx.Request.Context(), req)
	c.finish(ctx, req.cmd, resp, err)
}

// parseRequest reads the query string, or the form body when the query is
// empty. Multipart bodies are parsed so uploads are available either way.
func (c *Connector) parseRequest(r *http.Request) (*request, error) {
	req := &request{}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(c.opts.MaxMemory); err != nil {
			return nil, badRequest(codeCmdParams)
		}
		req.files = r.MultipartForm.File["upload[]"]
		if len(req.files) == 0 {
			req.files = r.MultipartForm.File["upload"]
		}
	case r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			return nil, badRequest(codeCmdParams)
		}
	}

	values := r.URL.Query()
	if len(values) == 0 || values.Get("cmd") == "" {
		if len(r.PostForm) > 0 {
			values = r.PostForm
		}
	}
	req.params = params(values)
	req.cmd = strings.ToLower(req.params.str("cmd"))
	return req, nil
}

func (c *Connector) finish(ctx *gin.Context, cmd string, resp gin.H, err error) {
	if err != nil {
		var cerr *Error
		if !errors.As(err, &cerr) {
			c.log.Error("command failed", zap.String("cmd", cmd), zap.Error(err))
			cerr = fail(codeOpen)
		}
		c.record(cmd, cerr.Code)
		c.write(ctx, cerr.Status, gin.H{"error": cerr.payload()})
		return
	}
	c.record(cmd, "ok")
	c.write(ctx, http.StatusOK, resp)
}

func (c *Connector) record(cmd, result string) {
	if c.metrics == nil || cmd == "" {
		return
	}
	c.metrics.RecordCommand(cmd, result)
}

func (c *Connector) write(ctx *gin.Context, status int, body gin.H) {
	data, err := sonic.Marshal(body)
	if err != nil {
		c.log.Error("encode response", zap.Error(err))
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	ctx.Data(status, "application/json; charset=utf-8", data)
}
