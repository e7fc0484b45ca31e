package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/config"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/converter"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http/middleware"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/repository"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/service"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/jwt"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists      = errors.New("user already exists with this email/phone")
	ErrIdentifierRequired     = errors.New("email or phone number is required for the chosen auth method")
	ErrInvalidPhoneNumber     = errors.New("invalid Syrian phone number")
	ErrAuthMethodUnavailable  = errors.New("authentication method is not available")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountInactive        = errors.New("account is not active")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrPhoneNotVerified       = errors.New("phone not verified")
	ErrInvalidOTP             = errors.New("invalid or expired OTP")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidResetToken      = errors.New("invalid or expired reset token")
	ErrEmailAlreadyRegistered = errors.New("email already exists")
	ErrRoleNotSeeded          = errors.New("role not found, run migrations first")
)

// AccountStatusError reports a login attempt on a non-active account.
type AccountStatusError struct {
	Status entity.UserStatus
}

func (e *AccountStatusError) Error() string {
	return "Account is " + string(e.Status)
}

func (e *AccountStatusError) Is(target error) bool {
	return target == ErrAccountInactive
}

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.VerifyResponse, error)
	ResendOTP(ctx context.Context, req *dto.ResendOTPRequest) (string, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Methods(ctx context.Context) *dto.AuthMethodsResponse
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	Logout(ctx context.Context, req *dto.LogoutRequest) error
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error)
}

type authUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	features           config.FeatureConfig
	otp                config.OTPConfig
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	tokenRepo          repository.VerificationTokenRepository
	jwtService         *jwt.JWTService
	tokenStore         service.TokenStore
	notifier           service.Notifier
	auditService       service.AuditService
	now                func() time.Time
	passwordCost       int
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg *config.Config,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	tokenRepo repository.VerificationTokenRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	notifier service.Notifier,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:                 db,
		log:                log,
		features:           cfg.Features,
		otp:                cfg.OTP,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		tokenRepo:          tokenRepo,
		jwtService:         jwtService,
		tokenStore:         tokenStore,
		notifier:           notifier,
		auditService:       auditService,
		now:                time.Now,
		passwordCost:       bcrypt.DefaultCost,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	method := u.detectAuthMethod(req)
	if !u.methodAvailable(method) {
		return nil, ErrAuthMethodUnavailable
	}

	email := normalizeEmail(req.Email)
	phone := ""
	if req.PhoneNumber != "" {
		if !validator.IsSyrianPhone(req.PhoneNumber) {
			return nil, ErrInvalidPhoneNumber
		}
		phone = validator.NormalizePhone(req.PhoneNumber)
	}
	if (method == entity.AuthMethodEmail && email == "") || (method == entity.AuthMethodPhone && phone == "") {
		return nil, ErrIdentifierRequired
	}

	existing, err := u.findByIdentifier(u.db.WithContext(ctx), identifierFor(method, email, phone))
	if err != nil {
		u.log.Warnf("Failed to check existing user: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.passwordCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	roleID := entity.RoleIDPatient
	if req.Role == entity.RoleDoctor {
		roleID = entity.RoleIDDoctor
	}

	user := &entity.User{
		RoleID:      roleID,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       optional(email),
		PhoneNumber: optional(phone),
		CountryCode: req.CountryCode,
		Password:    string(hashedPassword),
		AuthMethod:  method,
		Status:      entity.UserStatusPending,
	}

	// Mock email sign-ups skip the OTP round trip.
	autoVerified := u.features.UseMockServices && method == entity.AuthMethodEmail
	if autoVerified {
		user.Status = entity.UserStatusActive
		user.IsEmailVerified = true
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.userRepo.Create(tx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if err := u.createEmptyProfile(tx, user); err != nil {
		u.log.Warnf("Failed to create profile for user %s: %+v", user.ID, err)
		return nil, err
	}

	var code string
	if !autoVerified {
		code, err = u.issueToken(tx, user.ID, entity.TokenPurposeOTP, u.otp.Expiry)
		if err != nil {
			u.log.Warnf("Failed to store OTP: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"role":        req.Role,
		"auth_method": method,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if code != "" {
		if err := u.notifier.SendOTP(ctx, user, destination(user, method), code); err != nil {
			u.log.Warnf("Failed to send OTP to user %s: %+v", user.ID, err)
		}
	}

	u.log.Infof("User registered: id=%s, role=%s, method=%s", user.ID, req.Role, method)

	message := "Registration successful. Please check your email/phone for OTP"
	if u.features.UseMockServices {
		message = "Registration successful. OTP: " + u.features.MockOTPCode + " (Dev Mode)"
	}

	return &dto.RegisterResponse{
		UserID:               user.ID,
		AuthMethod:           string(method),
		RequiresVerification: !autoVerified,
		Message:              message,
	}, nil
}

func (u *authUsecase) detectAuthMethod(req *dto.RegisterRequest) entity.AuthMethod {
	if req.AuthMethod != "" {
		return entity.AuthMethod(req.AuthMethod)
	}
	switch {
	case u.features.AllowEmailAuth && req.Email != "":
		return entity.AuthMethodEmail
	case u.features.PhoneVerificationEnabled && req.PhoneNumber != "":
		return entity.AuthMethodPhone
	default:
		return entity.AuthMethodEmail
	}
}

func (u *authUsecase) methodAvailable(method entity.AuthMethod) bool {
	switch method {
	case entity.AuthMethodEmail:
		return u.features.AllowEmailAuth
	case entity.AuthMethodPhone:
		return u.features.PhoneVerificationEnabled
	}
	return false
}

func (u *authUsecase) createEmptyProfile(tx *gorm.DB, user *entity.User) error {
	if user.RoleID == entity.RoleIDDoctor {
		profile := &entity.DoctorProfile{
			UserID:            user.ID,
			Schedule:          entity.WeeklySchedule{},
			DocumentsVerified: u.features.AutoApproveDocuments,
		}
		if profile.DocumentsVerified {
			now := u.now()
			profile.VerifiedAt = &now
		}
		return u.doctorProfileRepo.Create(tx, profile)
	}
	return u.patientProfileRepo.Create(tx, &entity.PatientProfile{
		UserID:            user.ID,
		PreferredLanguage: entity.DefaultPreferredLanguage,
	})
}

// issueToken invalidates outstanding tokens of the purpose and stores a new one.
func (u *authUsecase) issueToken(tx *gorm.DB, userID uuid.UUID, purpose entity.TokenPurpose, ttl time.Duration) (string, error) {
	now := u.now()
	if err := u.tokenRepo.InvalidateAll(tx, userID, purpose, now); err != nil {
		return "", err
	}

	var secret string
	if purpose == entity.TokenPurposeOTP {
		code, err := u.generateOTP()
		if err != nil {
			return "", err
		}
		secret = code
	} else {
		secret = uuid.NewString()
	}

	token := &entity.VerificationToken{
		UserID:    userID,
		Token:     secret,
		Type:      purpose,
		ExpiresAt: now.Add(ttl),
	}
	if err := u.tokenRepo.Create(tx, token); err != nil {
		return "", err
	}
	return secret, nil
}

func (u *authUsecase) generateOTP() (string, error) {
	if u.features.UseMockServices && u.features.MockOTPCode != "" {
		return u.features.MockOTPCode, nil
	}
	length := u.otp.Length
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

func (u *authUsecase) Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.VerifyResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.findByIdentifier(tx, req.Identifier)
	if err != nil {
		u.log.Warnf("Failed to find user by identifier: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidOTP
	}

	if u.features.UseMockServices {
		if !acceptMockOTP(req.OTP, u.features.MockOTPCode) {
			return nil, ErrInvalidOTP
		}
	} else if err := u.redeemOTP(tx, user.ID, req.OTP); err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			// keep the attempt counter even though verification failed
			if commitErr := tx.Commit().Error; commitErr != nil {
				u.log.Warnf("Failed to record OTP attempt: %+v", commitErr)
			}
		}
		return nil, err
	}

	if isEmailIdentifier(req.Identifier) {
		user.IsEmailVerified = true
	} else {
		user.IsPhoneVerified = true
	}
	if user.Status == entity.UserStatusPending {
		user.Status = entity.UserStatusActive
	}

	if err := u.userRepo.UpdateFields(tx, user.ID, map[string]interface{}{
		"is_email_verified": user.IsEmailVerified,
		"is_phone_verified": user.IsPhoneVerified,
		"status":            user.Status,
	}); err != nil {
		u.log.Warnf("Failed to update verification status: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &user.ID, entity.AuditActionUserVerify, "user", user.ID.String(), nil, string(user.Status)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.VerifyResponse{
		UserID:          user.ID,
		Status:          string(user.Status),
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
	}, nil
}

func (u *authUsecase) redeemOTP(tx *gorm.DB, userID uuid.UUID, code string) error {
	token, err := u.tokenRepo.FindLatest(tx, userID, entity.TokenPurposeOTP)
	if err != nil {
		u.log.Warnf("Failed to find OTP: %+v", err)
		return err
	}
	now := u.now()
	if token == nil || !token.Usable(now, u.otp.MaxAttempts) {
		return ErrInvalidOTP
	}
	if token.Token != code {
		if err := u.tokenRepo.IncrementAttempts(tx, token.ID); err != nil {
			u.log.Warnf("Failed to increment OTP attempts: %+v", err)
			return err
		}
		return ErrInvalidOTP
	}
	return u.tokenRepo.MarkUsed(tx, token.ID, now)
}

// acceptMockOTP accepts the configured code or any six digits.
func acceptMockOTP(code, mockCode string) bool {
	if code == mockCode {
		return true
	}
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (u *authUsecase) ResendOTP(ctx context.Context, req *dto.ResendOTPRequest) (string, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.findByIdentifier(tx, req.Identifier)
	if err != nil {
		u.log.Warnf("Failed to find user by identifier: %+v", err)
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	code, err := u.issueToken(tx, user.ID, entity.TokenPurposeOTP, u.otp.Expiry)
	if err != nil {
		u.log.Warnf("Failed to store OTP: %+v", err)
		return "", err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return "", err
	}

	method := entity.AuthMethodPhone
	if isEmailIdentifier(req.Identifier) {
		method = entity.AuthMethodEmail
	}
	if err := u.notifier.SendOTP(ctx, user, destination(user, method), code); err != nil {
		u.log.Warnf("Failed to send OTP to user %s: %+v", user.ID, err)
	}

	if u.features.UseMockServices {
		return "OTP resent successfully. OTP: " + u.features.MockOTPCode + " (Dev Mode)", nil
	}
	return "OTP resent successfully. Please check your email/phone", nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.findByIdentifier(u.db.WithContext(ctx), req.Identifier)
	if err != nil {
		u.log.Warnf("Failed to find user by identifier: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, &AccountStatusError{Status: user.Status}
	}

	switch {
	case user.AuthMethod == entity.AuthMethodEmail && !user.IsEmailVerified:
		return nil, ErrEmailNotVerified
	case user.AuthMethod == entity.AuthMethodPhone && !user.IsPhoneVerified:
		return nil, ErrPhoneNotVerified
	}

	now := u.now()
	user.LastLogin = &now
	if err := u.userRepo.UpdateFields(u.db.WithContext(ctx), user.ID, map[string]interface{}{"last_login": now}); err != nil {
		u.log.Warnf("Failed to update last login: %+v", err)
		return nil, err
	}

	return u.issueSession(ctx, user)
}

// issueSession signs a token pair and registers both ids in the token store.
func (u *authUsecase) issueSession(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	access, err := u.jwtService.GenerateAccessToken(user.ID, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}
	refresh, err := u.jwtService.GenerateRefreshToken(user.ID, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, jwt.AccessToken, user.ID, access.ID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}
	if err := u.tokenStore.Save(ctx, jwt.RefreshToken, user.ID, refresh.ID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		User:         converter.UserToSummary(user),
	}, nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, ErrInvalidToken
	}

	if err := u.tokenStore.Revoke(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to revoke old refresh token: %+v", err)
		return nil, err
	}

	return u.issueSession(ctx, user)
}

func (u *authUsecase) Methods(ctx context.Context) *dto.AuthMethodsResponse {
	methods := []string{}
	if u.features.AllowEmailAuth {
		methods = append(methods, string(entity.AuthMethodEmail))
	}
	if u.features.PhoneVerificationEnabled {
		methods = append(methods, string(entity.AuthMethodPhone))
	}

	primary := string(entity.AuthMethodPhone)
	if u.features.AllowEmailAuth {
		primary = string(entity.AuthMethodEmail)
	}

	return &dto.AuthMethodsResponse{
		Methods:       methods,
		PrimaryMethod: primary,
		MockMode:      u.features.UseMockServices,
		Features:      FeatureFlags(u.features),
	}
}

// FeatureFlags exposes the feature toggles that clients may rely on.
func FeatureFlags(f config.FeatureConfig) dto.FeatureFlags {
	return dto.FeatureFlags{
		PhoneVerification:    f.PhoneVerificationEnabled,
		MockServices:         f.UseMockServices,
		EmailAuth:            f.AllowEmailAuth,
		DevBanner:            f.ShowDevBanner,
		AutoApproveDocuments: f.AutoApproveDocuments,
	}
}

// ForgotPassword never reveals whether the identifier belongs to an account.
func (u *authUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.findByIdentifier(tx, req.Identifier)
	if err != nil {
		u.log.Warnf("Failed to find user by identifier: %+v", err)
		return err
	}
	if user == nil {
		u.log.Infof("Password reset requested for unknown identifier")
		return nil
	}

	token, err := u.issueToken(tx, user.ID, entity.TokenPurposePasswordReset, u.otp.ResetExpiry)
	if err != nil {
		u.log.Warnf("Failed to store password reset token: %+v", err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	method := entity.AuthMethodPhone
	if isEmailIdentifier(req.Identifier) {
		method = entity.AuthMethodEmail
	}
	if err := u.notifier.SendPasswordReset(ctx, user, destination(user, method), token); err != nil {
		u.log.Warnf("Failed to send password reset to user %s: %+v", user.ID, err)
	}
	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	token, err := u.tokenRepo.FindByToken(tx, req.Token, entity.TokenPurposePasswordReset)
	if err != nil {
		u.log.Warnf("Failed to find reset token: %+v", err)
		return err
	}
	now := u.now()
	if token == nil || !token.Usable(now, 0) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.passwordCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	if err := u.userRepo.UpdateFields(tx, token.UserID, map[string]interface{}{"password": string(hashedPassword)}); err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return err
	}
	if err := u.tokenRepo.MarkUsed(tx, token.ID, now); err != nil {
		u.log.Warnf("Failed to mark reset token used: %+v", err)
		return err
	}
	if err := u.auditService.LogUpdate(ctx, tx, &token.UserID, entity.AuditActionPasswordReset, "user", token.UserID.String(), nil, nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if err := u.tokenStore.RevokeAll(ctx, token.UserID); err != nil {
		u.log.Warnf("Failed to revoke sessions of user %s: %+v", token.UserID, err)
		return err
	}

	u.log.Infof("Password reset: user=%s", token.UserID)
	return nil
}

func (u *authUsecase) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	tokenID, ok := middleware.GetTokenIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	if err := u.tokenStore.Revoke(ctx, jwt.AccessToken, userID, tokenID); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}

	if req == nil || req.RefreshToken == "" {
		return nil
	}
	claims, err := u.jwtService.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil || claims.UserID != userID {
		// the access token is gone; a bad refresh token changes nothing
		return nil
	}
	if err := u.tokenStore.Revoke(ctx, jwt.RefreshToken, userID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	db := u.db.WithContext(ctx)
	user, err := u.userRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	switch user.RoleID {
	case entity.RoleIDDoctor:
		profile, err := u.doctorProfileRepo.FindByUserID(db, user.ID)
		if err != nil {
			u.log.Warnf("Failed to find doctor profile: %+v", err)
			return nil, err
		}
		user.DoctorProfile = profile
	case entity.RoleIDPatient:
		profile, err := u.patientProfileRepo.FindByUserID(db, user.ID)
		if err != nil {
			u.log.Warnf("Failed to find patient profile: %+v", err)
			return nil, err
		}
		user.PatientProfile = profile
	}

	return converter.UserToResponse(user), nil
}

// CreateAdmin provisions an active administrator; it is reachable only from the CLI.
func (u *authUsecase) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByEmail(tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	role, err := u.roleRepo.FindByName(tx, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to find admin role: %+v", err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotSeeded
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.passwordCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		RoleID:           role.ID,
		FullName:         strings.TrimSpace(req.FullName),
		Email:            &email,
		Password:         string(hashedPassword),
		AuthMethod:       entity.AuthMethodEmail,
		Status:           entity.UserStatusActive,
		IsEmailVerified:  true,
		ProfileCompleted: true,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyRegistered
		}
		u.log.Warnf("Failed to create admin: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, nil, entity.AuditActionAdminCreate, "user", user.ID.String(), map[string]string{"email": email}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	user.Role = *role
	u.log.Infof("Admin created: id=%s", user.ID)
	return converter.UserToResponse(user), nil
}

// findByIdentifier treats an identifier containing "@" as an email, otherwise a phone number.
func (u *authUsecase) findByIdentifier(db *gorm.DB, identifier string) (*entity.User, error) {
	identifier = strings.TrimSpace(identifier)
	if isEmailIdentifier(identifier) {
		return u.userRepo.FindByEmail(db, normalizeEmail(identifier))
	}
	phone := validator.NormalizePhone(identifier)
	if phone == "" {
		return nil, nil
	}
	return u.userRepo.FindByPhone(db, phone)
}

func isEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

func identifierFor(method entity.AuthMethod, email, phone string) string {
	if method == entity.AuthMethodPhone {
		return phone
	}
	return email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func destination(user *entity.User, method entity.AuthMethod) string {
	if method == entity.AuthMethodPhone && user.PhoneNumber != nil {
		return user.CountryCode + *user.PhoneNumber
	}
	return user.EmailValue()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
