// Package server exposes an engine over newline-delimited JSON on
// stdin/stdout, for editors and scripts that embed the search binary as a
// child process. It is glue only; the engine owns no wire protocol.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/4lexxe/DevsProject-sub001/internal/logger"
	"github.com/4lexxe/DevsProject-sub001/pkg/config"
	"github.com/4lexxe/DevsProject-sub001/pkg/engine"
)

// Request is one incoming command.
type Request struct {
	Command string `json:"command"`
	Query   string `json:"query,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// SearchResponse answers a search command.
type SearchResponse struct {
	Items       []ResultItem        `json:"items"`
	Count       int                 `json:"count"`
	Total       int                 `json:"total"`
	Corrections []engine.Correction `json:"corrections,omitempty"`
	Algorithm   string              `json:"algorithm"`
	TimeTaken   int64               `json:"time_ms"`
}

// ResultItem is one ranked record in a search response.
type ResultItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SuggestResponse answers a suggest command.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

// StatsResponse answers a stats command.
type StatsResponse struct {
	State          string `json:"state"`
	IsBuilt        bool   `json:"is_built"`
	TotalTerms     int    `json:"total_terms"`
	DistinctNGrams int    `json:"distinct_ngrams"`
	MemoryBytes    uint64 `json:"memory_bytes"`
}

// ErrorResponse reports a failed command.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Server reads requests line by line and writes one JSON response per
// request.
type Server struct {
	eng    *engine.Engine
	cfg    config.ServerConfig
	reader *bufio.Reader
	writer io.Writer
	log    *log.Logger
}

// New creates a server over the given streams.
func New(eng *engine.Engine, cfg config.ServerConfig, r io.Reader, w io.Writer) *Server {
	return &Server{
		eng:    eng,
		cfg:    cfg,
		reader: bufio.NewReader(r),
		writer: w,
		log:    logger.New("server"),
	}
}

// Run serves until the input stream closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.send(map[string]string{"status": "ready"})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}
		s.handle(ctx, strings.TrimSpace(line))
	}
}

func (s *Server) handle(ctx context.Context, line string) {
	if line == "" {
		return
	}
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.sendError("invalid JSON request", 400)
		s.log.Errorf("unmarshaling request: %v", err)
		return
	}
	switch req.Command {
	case "search":
		s.handleSearch(ctx, req)
	case "suggest":
		s.handleSuggest(ctx, req)
	case "stats":
		st := s.eng.Stats()
		s.send(StatsResponse{
			State:          st.State,
			IsBuilt:        st.IsBuilt,
			TotalTerms:     st.TotalTerms,
			DistinctNGrams: st.DistinctNGrams,
			MemoryBytes:    st.ApproxMemoryBytes,
		})
	case "health":
		s.send(map[string]string{"status": "ok"})
	default:
		s.sendError(fmt.Sprintf("unknown command: %s", req.Command), 400)
	}
}

func (s *Server) handleSearch(ctx context.Context, req Request) {
	limit := s.clampLimit(req.Limit)
	result, err := s.eng.Search(ctx, req.Query, engine.Options{
		Page:  req.Page,
		Limit: limit,
	})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidQuery) {
			s.sendError(err.Error(), 400)
			return
		}
		s.sendError(err.Error(), 500)
		return
	}
	items := make([]ResultItem, 0, len(result.Items))
	for _, rr := range result.Items {
		items = append(items, ResultItem{ID: rr.Record.ID, Title: rr.Record.Title, Score: rr.Score})
	}
	s.send(SearchResponse{
		Items:       items,
		Count:       len(items),
		Total:       result.TotalCount,
		Corrections: result.Corrections,
		Algorithm:   result.AlgorithmLabel,
		TimeTaken:   result.ElapsedMs,
	})
}

func (s *Server) handleSuggest(ctx context.Context, req Request) {
	limit := s.clampLimit(req.Limit)
	suggestions, err := s.eng.Suggest(ctx, req.Prefix, limit)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidQuery) {
			s.sendError(err.Error(), 400)
			return
		}
		s.sendError(err.Error(), 500)
		return
	}
	s.send(SuggestResponse{Suggestions: suggestions, Count: len(suggestions)})
}

func (s *Server) clampLimit(limit int) int {
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

func (s *Server) send(response any) {
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Errorf("marshaling response: %v", err)
		s.sendError("internal server error", 500)
		return
	}
	fmt.Fprintln(s.writer, string(data))
}

func (s *Server) sendError(message string, code int) {
	data, err := json.Marshal(ErrorResponse{Error: message, Status: code})
	if err != nil {
		s.log.Errorf("marshaling error response: %v", err)
		return
	}
	fmt.Fprintln(s.writer, string(data))
}
