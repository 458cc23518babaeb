package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/api"
	"github.com/nekogravitycat/lab-booking-backend/internal/auth"
	"github.com/nekogravitycat/lab-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/lab-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/lab-booking-backend/internal/event"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	resourceHttp "github.com/nekogravitycat/lab-booking-backend/internal/resource/http"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
	"github.com/nekogravitycat/lab-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/lab-booking-backend/internal/user/http"
)

type env struct {
	router  *gin.Engine
	jwt     *auth.JWTManager
	clk     *clock.Fake
	users   *user.MemoryRepository
	resRepo *resource.MemoryRepository
	slots   *slot.MemoryRepository
	hasher  *auth.BcryptPasswordHasher
}

// newEnv wires the full router over in-memory repositories.
func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := auth.NewBcryptPasswordHasher(4)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	clk := clock.NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	users := user.NewMemoryRepository()
	userService := user.NewService(users, hasher)

	resRepo := resource.NewMemoryRepository()
	scheduleRepo := schedule.NewMemoryRepository()
	slots := slot.NewMemoryRepository()
	materializer := slot.NewMaterializer(slots, scheduleRepo, resRepo, slot.Hours{
		OpenHour:          8,
		CloseHour:         20,
		SlotLengthMinutes: 60,
	}, log)

	resService := resource.NewService(resRepo, materializer)
	scheduleService := schedule.NewService(scheduleRepo, resService, materializer, log)

	bookingRepo := booking.NewMemoryRepository(slots, resRepo)
	bookingService := booking.NewService(bookingRepo, clk, 30*time.Minute, event.Nop{}, log)

	router := api.NewRouter(api.Config{
		UserService:     userService,
		ResService:      resService,
		ScheduleService: scheduleService,
		SlotRepo:        slots,
		Materializer:    materializer,
		BookingService:  bookingService,
		JWTManager:      jwtManager,
	})

	return &env{
		router:  router,
		jwt:     jwtManager,
		clk:     clk,
		users:   users,
		resRepo: resRepo,
		slots:   slots,
		hasher:  hasher,
	}
}

func (e *env) request(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createUser inserts a user with the given role directly and returns a token.
func (e *env) createUser(t *testing.T, email string, role user.Role) (string, string) {
	t.Helper()

	hash, err := e.hasher.Hash("password-123")
	require.NoError(t, err)

	u := &user.User{Email: email, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), u))

	token, err := e.jwt.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	return u.ID, token
}

// createBookableSlot inserts a slot 24h ahead of the fixture clock.
func (e *env) createBookableSlot(t *testing.T, resourceID string) *slot.Slot {
	t.Helper()
	s := &slot.Slot{
		ResourceID: resourceID,
		Start:      e.clk.Now().Add(24 * time.Hour),
		End:        e.clk.Now().Add(25 * time.Hour),
	}
	require.NoError(t, e.slots.Upsert(context.Background(), s))
	return s
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)

	t.Run("register", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/auth/register", userHttp.RegisterRequest{
			Email:       "alice@example.com",
			Password:    "password-123",
			DisplayName: "Alice",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)

		var resp userHttp.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.Equal(t, string(user.RoleMember), resp.Role)
	})

	var token string
	t.Run("login", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/auth/login", userHttp.LoginRequest{
			Email:    "alice@example.com",
			Password: "password-123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp userHttp.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.AccessToken)
		token = resp.AccessToken
	})

	t.Run("me", func(t *testing.T) {
		w := e.request(t, "GET", "/v1/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("me without token", func(t *testing.T) {
		w := e.request(t, "GET", "/v1/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/auth/login", userHttp.LoginRequest{
			Email:    "alice@example.com",
			Password: "nope-nope-nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestResourceAdminGate(t *testing.T) {
	e := newEnv(t)
	_, adminToken := e.createUser(t, "admin@example.com", user.RoleAdmin)
	_, memberToken := e.createUser(t, "member@example.com", user.RoleMember)

	payload := resourceHttp.CreateResourceRequest{Name: "CNC Mill", Capacity: 1}

	t.Run("member forbidden", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/resources", payload, memberToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no token", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/resources", payload, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var resourceID string
	t.Run("admin creates", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/resources", payload, adminToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp resourceHttp.ResourceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.ID)
		resourceID = resp.ID
	})

	t.Run("creation seeded a week of slots", func(t *testing.T) {
		w := e.request(t, "GET", "/v1/resources/"+resourceID+"/slots", nil, memberToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []json.RawMessage `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 7*12)
	})
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)

	res := &resource.Resource{Name: "Telescope", Capacity: 1}
	require.NoError(t, e.resRepo.Create(context.Background(), res))
	s := e.createBookableSlot(t, res.ID)

	aliceID, aliceToken := e.createUser(t, "alice@example.com", user.RoleMember)
	bobID, bobToken := e.createUser(t, "bob@example.com", user.RoleMember)

	var aliceBookingID string
	t.Run("alice books and is confirmed", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/bookings", bookingHttp.CreateBookingRequest{SlotID: s.ID}, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp.Status)
		assert.Equal(t, aliceID, resp.UserID)
		aliceBookingID = resp.ID
	})

	t.Run("bob is waitlisted", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/bookings", bookingHttp.CreateBookingRequest{SlotID: s.ID}, bobToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "waitlisted", resp.Status)
		require.NotNil(t, resp.WaitlistPosition)
		assert.Equal(t, 1, *resp.WaitlistPosition)
	})

	t.Run("slot status reflects both", func(t *testing.T) {
		w := e.request(t, "GET", "/v1/slots/"+s.ID, nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp bookingHttp.SlotStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.ConfirmedCount)
		assert.Equal(t, 1, resp.WaitlistCount)
	})

	t.Run("bob cannot cancel alice's booking", func(t *testing.T) {
		w := e.request(t, "DELETE", "/v1/bookings/"+aliceBookingID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("alice cancels, bob is promoted", func(t *testing.T) {
		w := e.request(t, "DELETE", "/v1/bookings/"+aliceBookingID, nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp bookingHttp.CancelResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "cancelled", resp.Booking.Status)
		assert.Equal(t, bobID, resp.PromotedUserID)
	})

	t.Run("duplicate booking is rejected", func(t *testing.T) {
		w := e.request(t, "POST", "/v1/bookings", bookingHttp.CreateBookingRequest{SlotID: s.ID}, bobToken)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ALREADY_BOOKED", resp.Code)
	})
}
