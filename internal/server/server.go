package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/sidequests/questd/internal/app/tasklist"
	"github.com/sidequests/questd/internal/app/userstats"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// Config is the configuration of the read API server.
type Config struct {
	Addr       string
	Tasks      *tasklist.Service
	Stats      *userstats.Service
	Repository storage.Repository
	Notifier   *event.Notifier
	Logger     log.Logger
}

func (c *Config) defaults() error {
	if c.Addr == "" {
		c.Addr = ":8475"
	}

	if c.Tasks == nil {
		return fmt.Errorf("task service is required")
	}

	if c.Stats == nil {
		return fmt.Errorf("stats service is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"srv": "server"})

	return nil
}

// Server serves the read-only HTTP API and the websocket event feed.
type Server struct {
	cfg    Config
	server *http.Server
	logger log.Logger
}

// New creates a new API server.
func New(cfg Config) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/tasks", s.handleTaskList).Methods(http.MethodGet)
	v1.HandleFunc("/tasks/count", s.handleTaskCount).Methods(http.MethodGet)
	v1.HandleFunc("/tasks/{id:[0-9]+}", s.handleTask).Methods(http.MethodGet)
	v1.HandleFunc("/users/{user}/profile", s.handleProfile).Methods(http.MethodGet)
	v1.HandleFunc("/users/{user}/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/users/{user}/badges", s.handleBadges).Methods(http.MethodGet)
	v1.HandleFunc("/users/{user}/balance/{asset:[0-9]+}", s.handleBalance).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s, nil
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Infof("listening on %s", s.cfg.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TaskFilter{
		Creator:  q.Get("creator"),
		Worker:   q.Get("worker"),
		Status:   model.TaskStatus(q.Get("status")),
		OpenOnly: q.Get("open") == "true",
	}

	tasks, err := s.cfg.Tasks.Run(r.Context(), tasklist.Request{Filter: filter})
	if err != nil {
		s.writeError(w, err)
		return
	}

	items := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, newTaskResponse(t))
	}

	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, fmt.Errorf("invalid task id: %w", model.ErrNotValid))
		return
	}

	task, err := s.cfg.Tasks.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newTaskResponse(*task))
}

func (s *Server) handleTaskCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.cfg.Tasks.Count(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	res, err := s.cfg.Stats.Run(r.Context(), userstats.Request{User: mux.Vars(r)["user"]})
	if err != nil {
		s.writeError(w, err)
		return
	}

	badges := make([]badgeResponse, 0, len(res.Badges))
	for _, b := range res.Badges {
		badges = append(badges, badgeResponse{
			Type:        uint64(b.Meta.Type),
			Title:       b.Meta.Title,
			Description: b.Meta.Description,
			ImageURI:    b.Meta.ImageURI,
			Rarity:      b.Meta.Rarity.String(),
			MintedAt:    b.MintedAt,
		})
	}

	s.writeJSON(w, http.StatusOK, profileResponse{
		User:           res.Stats.User,
		Balance:        res.Balance,
		TasksCompleted: res.Stats.TasksCompleted,
		TasksCreated:   res.Stats.TasksCreated,
		TokensEarned:   res.Stats.TokensEarned,
		CurrentStreak:  res.Stats.CurrentStreak,
		MaxStreak:      res.Stats.MaxStreak,
		Badges:         badges,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.cfg.Stats.Run(r.Context(), userstats.Request{User: mux.Vars(r)["user"]})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		User:           res.Stats.User,
		TasksCompleted: res.Stats.TasksCompleted,
		TasksCreated:   res.Stats.TasksCreated,
		TokensEarned:   res.Stats.TokensEarned,
		CurrentStreak:  res.Stats.CurrentStreak,
		MaxStreak:      res.Stats.MaxStreak,
	})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	res, err := s.cfg.Stats.Run(r.Context(), userstats.Request{User: mux.Vars(r)["user"]})
	if err != nil {
		s.writeError(w, err)
		return
	}

	badges := make([]badgeResponse, 0, len(res.Badges))
	for _, b := range res.Badges {
		badges = append(badges, badgeResponse{
			Type:        uint64(b.Meta.Type),
			Title:       b.Meta.Title,
			Description: b.Meta.Description,
			ImageURI:    b.Meta.ImageURI,
			Rarity:      b.Meta.Rarity.String(),
			MintedAt:    b.MintedAt,
		})
	}

	s.writeJSON(w, http.StatusOK, badges)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asset, err := strconv.ParseUint(vars["asset"], 10, 64)
	if err != nil {
		s.writeError(w, fmt.Errorf("invalid asset id: %w", model.ErrNotValid))
		return
	}

	amount, err := s.cfg.Repository.GetBalance(r.Context(), vars["user"], asset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, balanceResponse{
		Holder:  vars["user"],
		AssetID: asset,
		Amount:  amount,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("could not write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNotValid):
		status = http.StatusBadRequest
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type taskResponse struct {
	ID          uint64          `json:"id"`
	Status      string          `json:"status"`
	Creator     string          `json:"creator"`
	Worker      string          `json:"worker,omitempty"`
	MetadataURI string          `json:"metadata_uri"`
	Reward      []rewardEntry   `json:"reward"`
	CreatedAt   time.Time       `json:"created_at"`
	ClaimedAt   *time.Time      `json:"claimed_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	VerifiedAt  *time.Time      `json:"verified_at,omitempty"`
}

type rewardEntry struct {
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

type badgeResponse struct {
	Type        uint64 `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURI    string `json:"image_uri"`
	Rarity      string `json:"rarity"`
	MintedAt    int64  `json:"minted_at"`
}

type profileResponse struct {
	User           string          `json:"user"`
	Balance        uint64          `json:"balance"`
	TasksCompleted uint64          `json:"tasks_completed"`
	TasksCreated   uint64          `json:"tasks_created"`
	TokensEarned   uint64          `json:"tokens_earned"`
	CurrentStreak  uint64          `json:"current_streak"`
	MaxStreak      uint64          `json:"max_streak"`
	Badges         []badgeResponse `json:"badges"`
}

type statsResponse struct {
	User           string `json:"user"`
	TasksCompleted uint64 `json:"tasks_completed"`
	TasksCreated   uint64 `json:"tasks_created"`
	TokensEarned   uint64 `json:"tokens_earned"`
	CurrentStreak  uint64 `json:"current_streak"`
	MaxStreak      uint64 `json:"max_streak"`
}

type countResponse struct {
	Count uint64 `json:"count"`
}

type balanceResponse struct {
	Holder  string `json:"holder"`
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

func newTaskResponse(t model.Task) taskResponse {
	reward := make([]rewardEntry, 0, len(t.Reward))
	for _, r := range t.Reward {
		reward = append(reward, rewardEntry{AssetID: r.AssetID, Amount: r.Amount})
	}

	return taskResponse{
		ID:          t.ID,
		Status:      string(t.Status),
		Creator:     t.Creator,
		Worker:      t.Worker,
		MetadataURI: t.MetadataURI,
		Reward:      reward,
		CreatedAt:   t.CreatedAt,
		ClaimedAt:   t.ClaimedAt,
		CompletedAt: t.CompletedAt,
		VerifiedAt:  t.VerifiedAt,
	}
}
