/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode JSON requests, resolve the target ship in the fleet,
    call into internal/game, and return JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the ship exist?)
    - Event Delivery (damage, pickups and experience are queued for the next tick)
    - Error Mapping (game errors -> HTTP status + {code, message})
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/everforgeworks/plasma-siege/internal/game"
	"github.com/everforgeworks/plasma-siege/internal/storage"
)

// Error codes returned in the JSON error body.
const (
	CodeConfiguration    = "CONFIGURATION_ERROR"
	CodeSlotIndex        = "SLOT_INDEX_OUT_OF_RANGE"
	CodeUnknownCategory  = "UNKNOWN_UPGRADE_CATEGORY"
	CodeCategoryMismatch = "UPGRADE_CATEGORY_MISMATCH"
	CodeMintNotEligible  = "MINT_NOT_ELIGIBLE"
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL"
)

// Request DTOs

type SpawnRequest struct {
	Tier   string `json:"tier"`
	ShipID string `json:"ship_id,omitempty"` // Resume a persisted pilot
}

type DamageRequest struct {
	ShipID string  `json:"ship_id"`
	Amount float32 `json:"amount"`
}

type TokenRequest struct {
	ShipID string `json:"ship_id"`
	Value  int    `json:"value"`
}

type ExperienceRequest struct {
	ShipID string `json:"ship_id"`
	Amount int    `json:"amount"`
}

type UpgradeRequest struct {
	ShipID     string               `json:"ship_id"`
	Category   game.UpgradeCategory `json:"category"`
	Index      int                  `json:"index"`
	UpgradeKey string               `json:"upgrade_key"` // Empty removes the slot contents
	SlotTier   int                  `json:"slot_tier"`
}

type MintRequest struct {
	ShipID      string `json:"ship_id"`
	MintAddress string `json:"mint_address"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ShipView is a snapshot plus the upgrade slots.
type ShipView struct {
	game.Snapshot
	Upgrades map[game.UpgradeCategory][]game.UpgradeSlot `json:"upgrades"`
}

// PilotStore persists pilot progress. *storage.Store satisfies it.
type PilotStore interface {
	SavePilot(ctx context.Context, rec game.PilotRecord) error
	LoadPilot(ctx context.Context, shipID string) (game.PilotRecord, error)
}

// Handlers serves the REST API for one fleet.
type Handlers struct {
	fleet  *game.Fleet
	pilots PilotStore // nil disables persistence

	mu      sync.RWMutex
	catalog []game.UpgradeSpec
	byKey   map[string]game.UpgradeSpec
}

// NewHandlers builds the API. pilots may be nil.
func NewHandlers(fleet *game.Fleet, pilots PilotStore, catalog []game.UpgradeSpec) *Handlers {
	h := &Handlers{fleet: fleet, pilots: pilots}
	h.SetCatalog(catalog)
	return h
}

// SetCatalog swaps the upgrade catalog (hot reload).
func (h *Handlers) SetCatalog(catalog []game.UpgradeSpec) {
	byKey := make(map[string]game.UpgradeSpec, len(catalog))
	for _, u := range catalog {
		byKey[u.Key] = u
	}
	h.mu.Lock()
	h.catalog = append([]game.UpgradeSpec(nil), catalog...)
	h.byKey = byKey
	h.mu.Unlock()
}

// Register mounts every route on mux. hub may be nil.
func (h *Handlers) Register(mux *http.ServeMux, hub *Hub) {
	// Information Endpoints
	mux.HandleFunc("/api/tiers", h.HandleGetTiers)
	mux.HandleFunc("/api/upgrades", h.HandleGetUpgrades)
	mux.HandleFunc("/api/ships", h.HandleShips)
	mux.HandleFunc("/api/ship", h.HandleShip)

	// Action Endpoints
	mux.HandleFunc("/api/ship/input", h.HandleInput)
	mux.HandleFunc("/api/ship/damage", h.HandleDamage)
	mux.HandleFunc("/api/ship/tokens", h.HandleTokens)
	mux.HandleFunc("/api/ship/experience", h.HandleExperience)
	mux.HandleFunc("/api/ship/upgrades", h.HandleUpgrade)
	mux.HandleFunc("/api/ship/mint", h.HandleMint)

	// Real-Time WebSocket Endpoint
	if hub != nil {
		mux.HandleFunc("/ws", hub.ServeWs)
	}
}

// HandleGetTiers returns the tier -> StatProfile table.
func (h *Handlers) HandleGetTiers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	out := make(map[string]game.StatProfile)
	for tier, p := range h.fleet.Profiles() {
		out[tier.String()] = p
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetUpgrades returns the upgrade catalog.
func (h *Handlers) HandleGetUpgrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	writeJSON(w, http.StatusOK, h.catalog)
}

// HandleShips lists snapshots (GET) or spawns a ship (POST).
func (h *Handlers) HandleShips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.fleet.Snapshots())
	case http.MethodPost:
		h.spawn(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *Handlers) spawn(w http.ResponseWriter, r *http.Request) {
	var req SpawnRequest
	if !decode(w, r, &req) {
		return
	}
	tier, err := game.ParseTier(req.Tier)
	if err != nil {
		writeError(w, err)
		return
	}

	// 1. Resume a persisted pilot when one exists
	if req.ShipID != "" && h.pilots != nil {
		rec, err := h.pilots.LoadPilot(r.Context(), req.ShipID)
		switch {
		case err == nil:
			ship, err := h.fleet.Restore(rec)
			if err != nil {
				writeError(w, err)
				return
			}
			log.Printf("API: restored pilot %s (%s)", ship.ID(), ship.Tier())
			writeJSON(w, http.StatusCreated, h.view(ship))
			return
		case !errors.Is(err, storage.ErrPilotNotFound):
			writeError(w, err)
			return
		}
	}

	// 2. Fresh ship
	var ship *game.ShipSimulation
	if req.ShipID != "" {
		ship, err = h.fleet.SpawnWithID(req.ShipID, tier)
	} else {
		ship, err = h.fleet.Spawn(tier)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(ship))
}

// HandleShip returns one ship (GET) or despawns it (DELETE).
func (h *Handlers) HandleShip(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeBadRequest, "missing id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ship, err := h.fleet.Get(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.view(ship))

	case http.MethodDelete:
		ship, err := h.fleet.Remove(id)
		if err != nil {
			writeError(w, err)
			return
		}
		rec := ship.Record()
		if h.pilots != nil {
			if err := h.pilots.SavePilot(r.Context(), rec); err != nil {
				log.Printf("API: save pilot %s: %v", id, err)
			}
		}
		writeJSON(w, http.StatusOK, rec)

	default:
		methodNotAllowed(w)
	}
}

// HandleInput latches the next input sample for a ship.
func (h *Handlers) HandleInput(w http.ResponseWriter, r *http.Request) {
	var req InputCommand
	ship, ok := h.decodeShip(w, r, &req, &req.ShipID)
	if !ok {
		return
	}
	ship.SetInput(req.Input)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDamage queues damage for the next tick.
func (h *Handlers) HandleDamage(w http.ResponseWriter, r *http.Request) {
	var req DamageRequest
	ship, ok := h.decodeShip(w, r, &req, &req.ShipID)
	if !ok {
		return
	}
	ship.OnDamageApplied(req.Amount)
	w.WriteHeader(http.StatusAccepted)
}

// HandleTokens queues a token pickup for the next tick.
func (h *Handlers) HandleTokens(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	ship, ok := h.decodeShip(w, r, &req, &req.ShipID)
	if !ok {
		return
	}
	ship.OnTokenPickupConsumed(req.Value)
	w.WriteHeader(http.StatusAccepted)
}

// HandleExperience queues an experience award for the next tick.
func (h *Handlers) HandleExperience(w http.ResponseWriter, r *http.Request) {
	var req ExperienceRequest
	ship, ok := h.decodeShip(w, r, &req, &req.ShipID)
	if !ok {
		return
	}
	ship.OnExperienceAwarded(req.Amount)
	w.WriteHeader(http.StatusAccepted)
}

// HandleUpgrade installs a catalog upgrade into a slot, or empties the slot.
func (h *Handlers) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req UpgradeRequest
	ship, ok := h.decodeShip(w, r, &req, &req.ShipID)
	if !ok {
		return
	}

	if req.UpgradeKey == "" {
		if err := ship.RemoveUpgrade(req.Category, req.Index); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.view(ship))
		return
	}

	h.mu.RLock()
	spec, found := h.byKey[req.UpgradeKey]
	h.mu.RUnlock()
	if !found {
		writeErrorCode(w, http.StatusNotFound, CodeNotFound, "unknown upgrade "+req.UpgradeKey)
		return
	}
	if err := ship.InstallUpgrade(req.Category, req.Index, spec, req.SlotTier); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(ship))
}

// HandleMint records an externally completed NFT mint.
func (h *Handlers) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	ship, ok := h.decodeShip(w, r, &req, &req.ShipID)
	if !ok {
		return
	}
	if req.MintAddress == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeBadRequest, "missing mint_address")
		return
	}
	if err := ship.RecordMint(req.MintAddress); err != nil {
		writeError(w, err)
		return
	}
	if h.pilots != nil {
		if err := h.pilots.SavePilot(r.Context(), ship.Record()); err != nil {
			log.Printf("API: save pilot %s: %v", ship.ID(), err)
		}
	}
	writeJSON(w, http.StatusOK, h.view(ship))
}

func (h *Handlers) view(ship *game.ShipSimulation) ShipView {
	v := ShipView{
		Snapshot: ship.Snapshot(),
		Upgrades: make(map[game.UpgradeCategory][]game.UpgradeSlot, len(game.Categories)),
	}
	for _, c := range game.Categories {
		v.Upgrades[c] = ship.UpgradeSlots(c)
	}
	return v
}

// decodeShip handles the common POST prologue: method check, body decode, ship lookup.
func (h *Handlers) decodeShip(w http.ResponseWriter, r *http.Request, dst any, shipID *string) (*game.ShipSimulation, bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return nil, false
	}
	if !decode(w, r, dst) {
		return nil, false
	}
	ship, err := h.fleet.Get(*shipID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ship, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeBadRequest, "Bad Request: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErrorCode(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// writeError maps game errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("API: %v", err)
	}
	writeErrorCode(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrShipNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, game.ErrSlotIndexOutOfRange):
		return http.StatusBadRequest, CodeSlotIndex
	case errors.Is(err, game.ErrUnknownUpgradeCategory):
		return http.StatusBadRequest, CodeUnknownCategory
	case errors.Is(err, game.ErrUpgradeCategoryMismatch):
		return http.StatusBadRequest, CodeCategoryMismatch
	case errors.Is(err, game.ErrMintNotEligible):
		return http.StatusConflict, CodeMintNotEligible
	case errors.Is(err, game.ErrShipExists):
		return http.StatusConflict, CodeBadRequest
	case game.IsConfigurationError(err):
		return http.StatusBadRequest, CodeConfiguration
	}
	return http.StatusInternalServerError, CodeInternal
}
