package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/refrag/internal/adapters/driving/render"
	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/logger"
)

const userIDKey = "user_id"

// Response formats accepted by /v1/answer.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// AnswerRequest is the body of POST /v1/answer.
type AnswerRequest struct {
	Question string `json:"question"`
	Format   string `json:"format,omitempty"`
}

// AnswerResponse is the answer record plus optional renderings and the error, if any.
type AnswerResponse struct {
	domain.AnswerRecord
	Markdown string       `json:"markdown,omitempty"`
	HTML     string       `json:"html,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed answer.
type ErrorDetail struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// RetrieveResponse lists retrieved chunks in rank order.
type RetrieveResponse struct {
	Chunks []domain.Chunk `json:"chunks"`
	Count  int            `json:"count"`
}

func (s *Server) answer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "", FormatJSON, FormatMarkdown, FormatHTML:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json, markdown or html")
	}

	if id, ok := c.Get(userIDKey).(string); ok {
		logger.Debug("Answer requested by %s", id)
	}

	result := s.ports.Answer.Answer(c.Request().Context(), req.Question)
	resp := AnswerResponse{AnswerRecord: result.Record}
	if !result.OK() {
		resp.Error = &ErrorDetail{Code: result.Err.Code, Message: result.Err.Message}
		return c.JSON(statusFor(result.Err.Code), resp)
	}

	switch format {
	case FormatMarkdown:
		resp.Markdown = render.Markdown(result.Record)
	case FormatHTML:
		html, err := render.HTML(result.Record)
		if err != nil {
			return err
		}
		resp.HTML = html
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) retrieve(c echo.Context) error {
	var req RetrieveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	chunks, err := s.ports.Retrieval.Retrieve(c.Request().Context(), req.Query, req.K)
	if err != nil {
		ae := domain.NewAnswerError(err)
		return echo.NewHTTPError(statusFor(ae.Code), ae.Error())
	}
	return c.JSON(http.StatusOK, RetrieveResponse{Chunks: chunks, Count: len(chunks)})
}

func (s *Server) ready(c echo.Context) error {
	names := make([]string, 0, len(s.ports.Ready))
	for name := range s.ports.Ready {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.ports.Ready[name](c.Request().Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	return c.JSON(status, checks)
}

// statusFor maps an answer error code onto an HTTP status.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeInvalidInput:
		return http.StatusBadRequest
	case domain.ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case domain.ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrorCodeAuth, domain.ErrorCodeRetrieval, domain.ErrorCodeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
