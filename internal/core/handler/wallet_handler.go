package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Petr-Hromjak/client-wallet/internal/core/logger"
	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/Petr-Hromjak/client-wallet/internal/core/usecase"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	usecase usecase.WalletUsecase
	log     logger.Logger
}

func NewWalletHandler(usecase usecase.WalletUsecase, log logger.Logger) *WalletHandler {
	return &WalletHandler{usecase: usecase, log: log}
}

func (h *WalletHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/wallets", h.CreateWallet).Methods("POST")
	router.HandleFunc("/api/v1/wallets/transfer", h.Transfer).Methods("POST")
	router.HandleFunc("/api/v1/wallets/{wallet_id}", h.GetWallet).Methods("GET")
	router.HandleFunc("/api/v1/wallets/{wallet_id}/transactions", h.GetTransactionHistory).Methods("GET")
	router.HandleFunc("/api/v1/wallets/{wallet_id}/deposit", h.Deposit).Methods("POST")
	router.HandleFunc("/api/v1/wallets/{wallet_id}/withdraw", h.Withdraw).Methods("POST")
}

type createWalletRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type externalOperationRequest struct {
	Currency      string `json:"currency"`
	Amount        string `json:"amount"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

type transferRequest struct {
	SenderWalletID   uuid.UUID `json:"sender_wallet_id"`
	ReceiverWalletID uuid.UUID `json:"receiver_wallet_id"`
	Currency         string    `json:"currency"`
	Amount           string    `json:"amount"`
}

type walletResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var amountRegexp = regexp.MustCompile(`^\s*\d{1,9}([.,]\d{1,2})?\s*$`)

func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.usecase.Create(r.Context(), req.Name, models.Currency(strings.ToUpper(req.Currency)))
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, toWalletResponse(wallet))
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := h.walletIDFromPath(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.usecase.Get(r.Context(), walletID)
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	walletID, err := h.walletIDFromPath(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.usecase.GetTransactionHistory(r.Context(), walletID)
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	walletID, req, amount, ok := h.decodeExternalOperation(w, r)
	if !ok {
		return
	}

	wallet, err := h.usecase.Deposit(r.Context(), usecase.DepositParams{
		WalletID:      walletID,
		Currency:      models.Currency(strings.ToUpper(req.Currency)),
		Amount:        amount,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
	})
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	walletID, req, amount, ok := h.decodeExternalOperation(w, r)
	if !ok {
		return
	}

	wallet, err := h.usecase.Withdraw(r.Context(), usecase.WithdrawParams{
		WalletID:      walletID,
		Currency:      models.Currency(strings.ToUpper(req.Currency)),
		Amount:        amount,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
	})
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.parseAmount(req.Amount)
	if err != nil {
		h.log.Warn("Invalid amount", logger.StringField("amount", req.Amount), logger.ErrorField("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.usecase.Transfer(r.Context(), usecase.TransferParams{
		SenderWalletID:   req.SenderWalletID,
		ReceiverWalletID: req.ReceiverWalletID,
		Currency:         models.Currency(strings.ToUpper(req.Currency)),
		Amount:           amount,
	})
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (h *WalletHandler) decodeExternalOperation(w http.ResponseWriter, r *http.Request) (uuid.UUID, *externalOperationRequest, decimal.Decimal, bool) {
	walletID, err := h.walletIDFromPath(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, nil, decimal.Zero, false
	}

	var req externalOperationRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, nil, decimal.Zero, false
	}

	amount, err := h.parseAmount(req.Amount)
	if err != nil {
		h.log.Warn("Invalid amount", logger.StringField("amount", req.Amount), logger.ErrorField("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, nil, decimal.Zero, false
	}

	return walletID, &req, amount, true
}

func (h *WalletHandler) walletIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["wallet_id"]
	walletID, err := uuid.Parse(raw)
	if err != nil {
		h.log.Warn("Invalid wallet id", logger.StringField("wallet_id", raw))
		return uuid.Nil, fmt.Errorf("invalid wallet id: %s", raw)
	}
	return walletID, nil
}

func (h *WalletHandler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Warn("Failed to decode request body", logger.ErrorField("error", err))
		return fmt.Errorf("invalid request payload")
	}
	return nil
}

// parseAmount validates and parses the amount string of a request.
func (h *WalletHandler) parseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(amountStr, " ", ""), ",", ".")

	if !amountRegexp.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("invalid amount format: %s", cleaned)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse amount: %v", err)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

func (h *WalletHandler) handleOperationError(w http.ResponseWriter, err error) {
	var werr *usecase.WalletError
	if !errors.As(err, &werr) {
		h.log.Error("Failed to process operation", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process operation")
		return
	}

	status := http.StatusInternalServerError
	switch werr.Kind {
	case usecase.KindWalletNotFound:
		status = http.StatusNotFound
	case usecase.KindNameAlreadyExists, usecase.KindSameWalletTransfer:
		status = http.StatusConflict
	case usecase.KindCurrencyMismatch, usecase.KindInvalidCurrency,
		usecase.KindInvalidAmount, usecase.KindInvalidName, usecase.KindNotEnoughFunds:
		status = http.StatusBadRequest
	case usecase.KindDepositFailed, usecase.KindWithdrawFailed, usecase.KindTransferFailed:
		h.log.Error("Wallet operation failed", logger.ErrorField("error", err))
	}

	respondWithJSON(w, status, errorResponse{Error: werr.Error(), Kind: string(werr.Kind)})
}

func toWalletResponse(wallet *models.Wallet) walletResponse {
	return walletResponse{
		ID:        wallet.ID,
		Name:      wallet.Name,
		Currency:  string(wallet.Currency),
		Balance:   wallet.Balance.StringFixedBank(2),
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
