package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/wanderlust-app/backend/models"
	"github.com/wanderlust-app/backend/store"
	"github.com/wanderlust-app/backend/utils"
)

type Response struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// UserStore is the user persistence surface the auth handlers need.
// Satisfied by *store.UserStore.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func RegisterUser(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding user data: %v", err)
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		if req.Username == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "username, email and password are required", http.StatusBadRequest)
			return
		}

		if _, err := users.FindByUsername(r.Context(), req.Username); err == nil {
			log.Printf("Username already exists: %s", req.Username)
			http.Error(w, "Username already exists", http.StatusConflict)
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Error checking username: %v", err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

		if _, err := users.FindByEmail(r.Context(), req.Email); err == nil {
			log.Printf("User email already exists: %s", req.Email)
			http.Error(w, "Email already exists", http.StatusConflict)
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Error checking email: %v", err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

		hashedPwd, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		user := &models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: hashedPwd,
		}
		if err := users.Insert(r.Context(), user); err != nil {
			log.Printf("Error inserting user into the database: %v", err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Response{Message: "User registered successfully"})
	}
}

func LoginUser(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding login credentials: %v", err)
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		user, err := users.FindByUsername(r.Context(), req.Username)
		if err != nil {
			log.Printf("User not found: %s", req.Username)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		if !utils.CheckPasswordHash(req.Password, user.Password) {
			log.Printf("Invalid credentials for user: %s", req.Username)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := utils.GenerateJWT(user.ID.Hex())
		if err != nil {
			log.Printf("Error generating JWT token: %v", err)
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(Response{Message: "Login successful", Token: token})
	}
}
