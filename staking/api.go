package staking

import (
	"net/http"

	"github.com/gorilla/mux"

	serr "github.com/mezonai/stakeledger/errors"
	"github.com/mezonai/stakeledger/jsonx"
	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/types"
)

// StakingAPI exposes read-only HTTP endpoints over an Engine. Nothing here
// mutates state; every operation goes through the CLI with an explicit
// signer.
type StakingAPI struct {
	engine *Engine
	router *mux.Router
}

// NewStakingAPI creates a new staking API
func NewStakingAPI(engine *Engine) *StakingAPI {
	api := &StakingAPI{
		engine: engine,
		router: mux.NewRouter(),
	}
	api.setupRoutes()
	return api
}

// setupRoutes configures API routes
func (api *StakingAPI) setupRoutes() {
	api.router.HandleFunc("/stake/pool", api.getPool).Methods("GET")
	api.router.HandleFunc("/stake/treasury", api.getTreasury).Methods("GET")
	api.router.HandleFunc("/stake/vaults/{asset}", api.getVault).Methods("GET")

	api.router.HandleFunc("/stake/accounts", api.getAccounts).Methods("GET")
	api.router.HandleFunc("/stake/accounts/{owner}/{asset}", api.getAccount).Methods("GET")

	api.router.HandleFunc("/balances/{asset}/{address}", api.getBalance).Methods("GET")
}

// GetRouter returns the configured router
func (api *StakingAPI) GetRouter() *mux.Router {
	return api.router
}

func (api *StakingAPI) getPool(w http.ResponseWriter, r *http.Request) {
	pool, err := api.engine.Pool()
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, pool)
}

func (api *StakingAPI) getTreasury(w http.ResponseWriter, r *http.Request) {
	pool, err := api.engine.Pool()
	if err != nil {
		api.writeError(w, err)
		return
	}
	balance, err := api.engine.TreasuryBalance()
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, map[string]interface{}{
		"treasury":     pool.Treasury,
		"reward_asset": pool.RewardAsset,
		"balance":      balance,
	})
}

func (api *StakingAPI) getVault(w http.ResponseWriter, r *http.Request) {
	asset, ok := api.addressVar(w, r, "asset")
	if !ok {
		return
	}
	balance, err := api.engine.VaultBalance(asset)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, map[string]interface{}{
		"asset":   asset,
		"balance": balance,
	})
}

func (api *StakingAPI) getAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := api.engine.StakeAccounts()
	if err != nil {
		api.writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []*types.StakeAccount{}
	}
	api.writeJSON(w, accounts)
}

func (api *StakingAPI) getAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := api.addressVar(w, r, "owner")
	if !ok {
		return
	}
	asset, ok := api.addressVar(w, r, "asset")
	if !ok {
		return
	}
	acc, err := api.engine.StakeAccount(owner, asset)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, acc)
}

func (api *StakingAPI) getBalance(w http.ResponseWriter, r *http.Request) {
	asset, ok := api.addressVar(w, r, "asset")
	if !ok {
		return
	}
	addr, ok := api.addressVar(w, r, "address")
	if !ok {
		return
	}
	balance, err := api.engine.Balance(addr, asset)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, map[string]interface{}{
		"asset":   asset,
		"address": addr,
		"balance": balance,
	})
}

func (api *StakingAPI) addressVar(w http.ResponseWriter, r *http.Request, name string) (types.Address, bool) {
	addr, err := types.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, "Invalid "+name+" address", http.StatusBadRequest)
		return types.ZeroAddress, false
	}
	return addr, true
}

func (api *StakingAPI) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch serr.CodeOf(err) {
	case serr.ErrCodePoolNotInitialized, serr.ErrCodeAccountNotFound, serr.ErrCodeUnsupportedToken:
		status = http.StatusNotFound
	case "":
		logx.Error("STAKING_API", "Request failed: ", err)
		http.Error(w, "Internal server error", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}

// writeJSON writes JSON response
func (api *StakingAPI) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsonx.NewEncoder(w).Encode(data); err != nil {
		logx.Error("STAKING_API", "Failed to encode JSON response:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
