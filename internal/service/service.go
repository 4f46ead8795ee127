// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"net"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"gopkg.microglot.org/inputseq.go/internal/compiler"
	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
)

const (
	PathCompile      = "/v1/compile"
	PathCanonicalize = "/v1/canonicalize"

	headerRequestID = "X-Request-Id"
)

// Handler serves the compile API. Input diagnostics are a normal 200
// response; only malformed requests and internal faults are errors.
type Handler struct {
	Compiler *compiler.Compiler
	Logger   *zap.Logger
}

func NewHandler(c *compiler.Compiler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Compiler: c, Logger: logger}
}

func (self *Handler) Handle(ctx *fasthttp.RequestCtx) {
	id := uuid.NewString()
	ctx.Response.Header.Set(headerRequestID, id)
	if !ctx.IsPost() {
		self.writeError(ctx, id, fasthttp.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch string(ctx.Path()) {
	case PathCompile:
		self.compile(ctx, id)
	case PathCanonicalize:
		self.canonicalize(ctx, id)
	default:
		self.writeError(ctx, id, fasthttp.StatusNotFound, "not found")
	}
}

func (self *Handler) compile(ctx *fasthttp.RequestCtx, id string) {
	var req CompileRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		self.writeError(ctx, id, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, err := self.Compiler.Compile(context.Background(), &compiler.CompileRequest{Text: req.Text, Params: req.Params.sequence()})
	var diagnostics compiler.MultiException
	switch {
	case err == nil, errors.As(err, &diagnostics):
	case errors.Is(err, sequence.ErrInvalidParams):
		self.writeError(ctx, id, fasthttp.StatusBadRequest, err.Error())
		return
	default:
		self.fail(ctx, id, err)
		return
	}

	s := resp.Sequence
	numbers, keywords := s.Realized()
	out := &CompileResponse{
		RequestID: id,
		Valid:     s.Valid(),
		Numbers:   numbers,
		Keywords:  keywords,
	}
	if s.Valid() {
		if out.Canonical, err = s.Canonical(); err != nil {
			self.fail(ctx, id, err)
			return
		}
		if out.Compact, err = s.Compact(); err != nil {
			self.fail(ctx, id, err)
			return
		}
	}
	for _, e := range s.Exceptions() {
		out.Diagnostics = append(out.Diagnostics, diagnostic(e))
	}
	self.Logger.Debug("compile request", zap.String("request_id", id), zap.Bool("valid", out.Valid))
	self.write(ctx, fasthttp.StatusOK, out)
}

func (self *Handler) canonicalize(ctx *fasthttp.RequestCtx, id string) {
	var req CanonicalizeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		self.writeError(ctx, id, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	var s *sequence.Sequence
	var err error
	switch {
	case req.Numbers != nil && req.Keywords != nil:
		s, err = sequence.FromPairs(req.Numbers, req.Keywords)
	case req.Numbers != nil:
		s, err = sequence.FromNumbers(req.Numbers)
	case req.Keywords != nil:
		s, err = sequence.FromKeywords(req.Keywords)
	default:
		self.writeError(ctx, id, fasthttp.StatusBadRequest, "numbers or keywords are required")
		return
	}
	if errors.Is(err, sequence.ErrInvalidParams) {
		self.writeError(ctx, id, fasthttp.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		self.fail(ctx, id, err)
		return
	}
	out := &CanonicalizeResponse{RequestID: id}
	if out.Canonical, err = s.Canonical(); err != nil {
		self.fail(ctx, id, err)
		return
	}
	if out.Compact, err = s.Compact(); err != nil {
		self.fail(ctx, id, err)
		return
	}
	self.write(ctx, fasthttp.StatusOK, out)
}

func (self *Handler) fail(ctx *fasthttp.RequestCtx, id string, err error) {
	self.Logger.Error("request failed", zap.String("request_id", id), zap.Error(err))
	self.writeError(ctx, id, fasthttp.StatusInternalServerError, "internal error")
}

func (self *Handler) writeError(ctx *fasthttp.RequestCtx, id string, status int, message string) {
	self.write(ctx, status, &ErrorResponse{RequestID: id, Status: status, Message: message})
}

func (self *Handler) write(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		self.Logger.Error("failed to encode response", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func diagnostic(e exc.Exception) Diagnostic {
	return Diagnostic{Code: e.Code(), Message: e.Message(), Column: e.Location().Column()}
}

// Serve handles requests from ln until ctx is done, then shuts down
// gracefully.
func (self *Handler) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler: self.Handle,
		Name:    "inputseq",
		Logger:  zap.NewStdLog(self.Logger),
	}
	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	self.Logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		return err
	}
	return <-errs
}

func (self *Handler) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	self.Logger.Info("listening", zap.String("addr", ln.Addr().String()))
	return self.Serve(ctx, ln)
}
