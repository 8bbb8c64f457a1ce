package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
	"github.com/sbilibin2017/gw-expense-tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT, services.WithBcryptCost(bcrypt.MinCost))

	tests := []struct {
		name         string
		userName     string
		email        string
		password     string
		lookupEmail  string
		existingUser *models.UserDB
		readerErr    error
		writerErr    error
		wantErr      error
		wantErrText  string
	}{
		{
			name:        "successful registration",
			userName:    "Alice",
			email:       " Alice@Example.com ",
			password:    "pass123",
			lookupEmail: "alice@example.com",
		},
		{
			name:         "email already exists",
			userName:     "Bob",
			email:        "bob@example.com",
			password:     "pass123",
			lookupEmail:  "bob@example.com",
			existingUser: &models.UserDB{UserID: uuid.New()},
			wantErr:      services.ErrUserAlreadyExists,
		},
		{
			name:        "reader error",
			userName:    "Eve",
			email:       "eve@example.com",
			password:    "pass123",
			lookupEmail: "eve@example.com",
			readerErr:   errors.New("db error"),
			wantErrText: "db error",
		},
		{
			name:        "writer error",
			userName:    "Carol",
			email:       "carol@example.com",
			password:    "pass123",
			lookupEmail: "carol@example.com",
			writerErr:   errors.New("save error"),
			wantErrText: "save error",
		},
		{
			name:        "email taken by a concurrent registration",
			userName:    "Dan",
			email:       "dan@example.com",
			password:    "pass123",
			lookupEmail: "dan@example.com",
			writerErr:   fmt.Errorf("%w: users_email_key", models.ErrDuplicate),
			wantErr:     services.ErrUserAlreadyExists,
		},
		{
			name:     "missing name",
			email:    "x@example.com",
			password: "pass123",
			wantErr:  services.ErrValidation,
		},
		{
			name:     "missing password",
			userName: "X",
			email:    "x@example.com",
			wantErr:  services.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.lookupEmail != "" {
				mockReader.EXPECT().
					GetByEmail(gomock.Any(), tt.lookupEmail).
					Return(tt.existingUser, tt.readerErr)
			}

			if tt.lookupEmail != "" && tt.existingUser == nil && tt.readerErr == nil {
				mockWriter.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user *models.UserDB) error {
						assert.NotEqual(t, uuid.Nil, user.UserID)
						assert.Equal(t, tt.lookupEmail, user.Email)
						assert.NotEqual(t, tt.password, user.PasswordHash)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)))
						return tt.writerErr
					})
			}

			err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrText != "":
				assert.EqualError(t, err, tt.wantErrText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	password := "secret"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	userID := uuid.New()

	tests := []struct {
		name      string
		email     string
		user      *models.UserDB
		readerErr error
		jwtErr    error
		wantErr   error
		expectJWT string
		loginPass string
	}{
		{
			name:      "successful login",
			email:     "alice@example.com",
			user:      &models.UserDB{UserID: userID, Name: "Alice", Email: "alice@example.com", PasswordHash: string(hashed)},
			expectJWT: "token123",
			loginPass: password,
		},
		{
			name:      "user does not exist",
			email:     "bob@example.com",
			wantErr:   services.ErrUserDoesNotExist,
			loginPass: password,
		},
		{
			name:      "invalid password",
			email:     "carol@example.com",
			user:      &models.UserDB{UserID: uuid.New(), Email: "carol@example.com", PasswordHash: string(hashed)},
			wantErr:   services.ErrInvalidCredentials,
			loginPass: "wrongpass",
		},
		{
			name:      "reader error",
			email:     "eve@example.com",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
			loginPass: password,
		},
		{
			name:      "JWT generation error",
			email:     "dan@example.com",
			user:      &models.UserDB{UserID: userID, Email: "dan@example.com", PasswordHash: string(hashed)},
			jwtErr:    errors.New("jwt error"),
			wantErr:   errors.New("jwt error"),
			loginPass: password,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByEmail(gomock.Any(), tt.email).
				Return(tt.user, tt.readerErr)

			if tt.user != nil && tt.readerErr == nil && tt.loginPass == password {
				mockJWT.EXPECT().
					Generate(gomock.Any(), tt.user.UserID).
					Return(tt.expectJWT, tt.jwtErr)
			}

			token, user, err := svc.Login(context.Background(), tt.email, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, token)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectJWT, token)
			assert.Equal(t, &models.PublicUser{ID: userID, Name: "Alice", Email: "alice@example.com"}, user)
		})
	}
}

func TestAuthService_LoginValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := services.NewAuthService(
		services.NewMockUserReader(ctrl),
		services.NewMockUserWriter(ctrl),
		services.NewMockJWTGenerator(ctrl),
	)

	_, _, err := svc.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, services.ErrValidation)
}
