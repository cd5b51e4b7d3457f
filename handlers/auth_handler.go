package handlers

import (
	"context"
	"net/http"

	"github.com/agentdouble/kpix/models"
	service "github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tokens, err := h.service.Signup(ctx, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Organization created successfully", tokens, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tokens, err := h.service.Login(ctx, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Logged in successfully", tokens, http.StatusOK)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tokens, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Token refreshed successfully", tokens, http.StatusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.service.Me(ctx, p)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "User retrieved successfully", user, http.StatusOK)
}

func (h *AuthHandler) Organization(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	org, err := h.service.Organization(ctx, p)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Organization retrieved successfully", org, http.StatusOK)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := h.service.ListUsers(ctx, p)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Users retrieved successfully", users, http.StatusOK)
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.service.CreateUser(ctx, p, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "User created successfully", user, http.StatusCreated)
}
