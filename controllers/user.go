package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mystore/middleware"
	"mystore/models"
	"mystore/store"
	"mystore/utils"
)

// UserController handles user-related requests
type UserController struct {
	Users        store.UserStore
	EmailService utils.EmailSender
}

// NewUserController creates a new UserController with EmailService
func NewUserController(users store.UserStore, emailService utils.EmailSender) *UserController {
	return &UserController{
		Users:        users,
		EmailService: emailService,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || input.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	exists, err := uc.Users.EmailExists(ctx, input.Email)
	if err != nil {
		utils.RespondInternal(w, "Database error", err)
		return
	}
	if exists {
		utils.RespondError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondInternal(w, "Error hashing password", err)
		return
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
	}
	if err := uc.Users.Insert(ctx, user); err != nil {
		utils.RespondInternal(w, "Error creating user", err)
		return
	}

	// Send the welcome email off the request path; a failure is logged only.
	go func(email, name string) {
		if err := uc.EmailService.SendWelcomeEmail(email, name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}(user.Email, user.Name)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
	})
}

// Login handles user authentication and sets the auth cookie
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := uc.Users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(creds.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		utils.RespondInternal(w, "Database error", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Name, user.Email)
	if err != nil {
		utils.RespondInternal(w, "Error generating token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    user,
	})
}

// Logout clears the auth cookie
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GetProfile returns the authenticated user's decoded claims
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]string{
			"id":    claims.UserID,
			"name":  claims.Name,
			"email": claims.Email,
		},
	})
}
