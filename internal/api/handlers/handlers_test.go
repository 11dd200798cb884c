package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/maxxlamenaace/roomio-be/internal/api"
	"github.com/maxxlamenaace/roomio-be/internal/database"
	"github.com/maxxlamenaace/roomio-be/internal/models"
	"github.com/maxxlamenaace/roomio-be/internal/services"
	"github.com/maxxlamenaace/roomio-be/internal/websocket"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	userService := services.NewUserService(db)
	topicService := services.NewTopicService(db)
	roomService := services.NewRoomService(db, topicService)
	messageService := services.NewMessageService(db)
	eventService := services.NewEventService(db)

	return api.NewRouter(hub, userService, topicService, roomService, messageService, eventService)
}

func doGet(router http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doPost(router http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// sessionCookie extracts the session token cookie from a response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}

// register signs up a user and returns their session cookie.
func register(t *testing.T, router http.Handler, username, password string) *http.Cookie {
	t.Helper()
	rec := doPost(router, "/register/", url.Values{
		"username":        {username},
		"password":        {password},
		"passwordConfirm": {password},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("register %q: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

// createRoom creates a room through the API and returns its ID, found
// via the listing.
func createRoom(t *testing.T, router http.Handler, cookie *http.Cookie, topic, name string) string {
	t.Helper()
	rec := doPost(router, "/create-room/", url.Values{
		"topic":       {topic},
		"name":        {name},
		"description": {""},
	}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create room %q: status = %d, body = %s", name, rec.Code, rec.Body.String())
	}

	var listing struct {
		Rooms []models.Room `json:"rooms"`
	}
	home := doGet(router, "/", nil)
	if err := json.NewDecoder(home.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	for _, room := range listing.Rooms {
		if room.Name == name {
			return room.ID
		}
	}
	t.Fatalf("created room %q not present in listing", name)
	return ""
}

func TestRegisterAndLoginCaseInsensitive(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "Alice", "hunter2hunter2")

	// Login with a different casing of the registered name.
	rec := doPost(router, "/login/", url.Values{
		"username": {"ALICE"},
		"password": {"hunter2hunter2"},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d; body = %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("login redirect = %q, want %q", loc, "/")
	}
	sessionCookie(t, rec)
}

func TestLoginUnknownUserCarriesBothNotices(t *testing.T) {
	router := newTestRouter(t)

	rec := doPost(router, "/login/", url.Values{
		"username": {"ghost"},
		"password": {"whatever123"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusOK)
	}

	var view struct {
		Notices []string `json:"notices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode login view: %v", err)
	}
	want := []string{"User does not exist", "Invalid credentials"}
	if len(view.Notices) != len(want) {
		t.Fatalf("notices = %v, want %v", view.Notices, want)
	}
	for i := range want {
		if view.Notices[i] != want[i] {
			t.Errorf("notices[%d] = %q, want %q", i, view.Notices[i], want[i])
		}
	}
}

func TestRegisterValidationRerendersForm(t *testing.T) {
	router := newTestRouter(t)

	rec := doPost(router, "/register/", url.Values{
		"username":        {"bob"},
		"password":        {"short"},
		"passwordConfirm": {"short"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, want %d", rec.Code, http.StatusOK)
	}

	var view struct {
		Page        string            `json:"page"`
		Notices     []string          `json:"notices"`
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode register view: %v", err)
	}
	if view.Page != "register" {
		t.Errorf("page = %q, want %q", view.Page, "register")
	}
	if len(view.Notices) != 1 || view.Notices[0] != "An error occurred during registration" {
		t.Errorf("notices = %v, want the generic registration notice", view.Notices)
	}
	if _, ok := view.FieldErrors["password"]; !ok {
		t.Errorf("fieldErrors = %v, want an error on password", view.FieldErrors)
	}
}

func TestAuthRequiredRoutesRedirectToLogin(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/create-room/", "/update-room/some-id/", "/delete-room/some-id/", "/delete-message/some-id/"}
	for _, path := range paths {
		rec := doGet(router, path, nil)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/login/" {
			t.Errorf("GET %s redirect = %q, want %q", path, loc, "/login/")
		}
	}
}

func TestPostMessageJoinsParticipantsOnce(t *testing.T) {
	router := newTestRouter(t)

	host := register(t, router, "host", "hunter2hunter2")
	poster := register(t, router, "poster", "hunter2hunter2")
	roomID := createRoom(t, router, host, "golang", "general")

	// Unauthenticated posting is redirected to the login form.
	rec := doPost(router, "/room/"+roomID+"/", url.Values{"body": {"anon"}}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login/" {
		t.Fatalf("anonymous post: status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}

	for i := 0; i < 2; i++ {
		rec := doPost(router, "/room/"+roomID+"/", url.Values{"body": {"hello"}}, poster)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("post #%d status = %d, body = %s", i+1, rec.Code, rec.Body.String())
		}
		if loc := rec.Header().Get("Location"); loc != "/room/"+roomID+"/" {
			t.Errorf("post redirect = %q, want back to the room", loc)
		}
	}

	var view struct {
		Conversation []models.Message `json:"conversation"`
		Participants []models.User    `json:"participants"`
	}
	rec = doGet(router, "/room/"+roomID+"/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("room view status = %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode room view: %v", err)
	}
	if len(view.Conversation) != 2 {
		t.Errorf("conversation length = %d, want 2", len(view.Conversation))
	}
	if len(view.Participants) != 1 {
		t.Errorf("participant count = %d, want 1 despite repeated posts", len(view.Participants))
	}
	if len(view.Participants) == 1 && view.Participants[0].Username != "poster" {
		t.Errorf("participant = %q, want %q", view.Participants[0].Username, "poster")
	}
}

func TestNonOwnerMutationsForbidden(t *testing.T) {
	router := newTestRouter(t)

	owner := register(t, router, "owner", "hunter2hunter2")
	intruder := register(t, router, "intruder", "hunter2hunter2")
	roomID := createRoom(t, router, owner, "golang", "private club")

	rec := doPost(router, "/update-room/"+roomID+"/", url.Values{
		"topic":       {"hijacked"},
		"name":        {"mine now"},
		"description": {""},
	}, intruder)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner update status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = doPost(router, "/delete-room/"+roomID+"/", nil, intruder)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner delete status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// The room is untouched.
	var view struct {
		Room models.Room `json:"room"`
	}
	roomRec := doGet(router, "/room/"+roomID+"/", nil)
	if err := json.NewDecoder(roomRec.Body).Decode(&view); err != nil {
		t.Fatalf("decode room view: %v", err)
	}
	if view.Room.Name != "private club" {
		t.Errorf("room name after forbidden update = %q, want %q", view.Room.Name, "private club")
	}

	// The owner's update goes through.
	rec = doPost(router, "/update-room/"+roomID+"/", url.Values{
		"topic":       {"golang"},
		"name":        {"renamed"},
		"description": {""},
	}, owner)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("owner update status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestDeleteRoomFlow(t *testing.T) {
	router := newTestRouter(t)

	owner := register(t, router, "owner", "hunter2hunter2")
	roomID := createRoom(t, router, owner, "golang", "doomed")

	// GET renders a confirmation view instead of mutating.
	rec := doGet(router, "/delete-room/"+roomID+"/", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmation view status = %d", rec.Code)
	}
	var confirm struct {
		Page string `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&confirm); err != nil {
		t.Fatalf("decode confirmation view: %v", err)
	}
	if confirm.Page != "confirm-delete" {
		t.Errorf("confirmation page = %q, want %q", confirm.Page, "confirm-delete")
	}

	rec = doPost(router, "/delete-room/"+roomID+"/", nil, owner)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if rec := doGet(router, "/room/"+roomID+"/", nil); rec.Code != http.StatusNotFound {
		t.Errorf("deleted room view status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteMessageOnlyByAuthor(t *testing.T) {
	router := newTestRouter(t)

	host := register(t, router, "host", "hunter2hunter2")
	other := register(t, router, "other", "hunter2hunter2")
	roomID := createRoom(t, router, host, "golang", "general")

	if rec := doPost(router, "/room/"+roomID+"/", url.Values{"body": {"keep me"}}, host); rec.Code != http.StatusSeeOther {
		t.Fatalf("post status = %d", rec.Code)
	}

	var view struct {
		Conversation []models.Message `json:"conversation"`
	}
	rec := doGet(router, "/room/"+roomID+"/", nil)
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode room view: %v", err)
	}
	if len(view.Conversation) != 1 {
		t.Fatalf("conversation length = %d, want 1", len(view.Conversation))
	}
	msgID := view.Conversation[0].ID

	if rec := doPost(router, "/delete-message/"+msgID+"/", nil, other); rec.Code != http.StatusForbidden {
		t.Errorf("non-author delete status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := doPost(router, "/delete-message/"+msgID+"/", nil, host); rec.Code != http.StatusSeeOther {
		t.Errorf("author delete status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if rec := doGet(router, "/delete-message/"+msgID+"/", host); rec.Code != http.StatusNotFound {
		t.Errorf("deleted message lookup status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProfileView(t *testing.T) {
	router := newTestRouter(t)

	host := register(t, router, "profiled", "hunter2hunter2")
	roomID := createRoom(t, router, host, "golang", "general")
	if rec := doPost(router, "/room/"+roomID+"/", url.Values{"body": {"my post"}}, host); rec.Code != http.StatusSeeOther {
		t.Fatalf("post status = %d", rec.Code)
	}

	// Resolve the user's ID from the room they host.
	var roomView struct {
		Room models.Room `json:"room"`
	}
	rec := doGet(router, "/room/"+roomID+"/", nil)
	if err := json.NewDecoder(rec.Body).Decode(&roomView); err != nil {
		t.Fatalf("decode room view: %v", err)
	}

	var profile struct {
		User         models.User      `json:"user"`
		Rooms        []models.Room    `json:"rooms"`
		RoomMessages []models.Message `json:"roomMessages"`
	}
	rec = doGet(router, "/user-profile/"+roomView.Room.HostID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.User.Username != "profiled" {
		t.Errorf("profile user = %q, want %q", profile.User.Username, "profiled")
	}
	if len(profile.Rooms) != 1 || len(profile.RoomMessages) != 1 {
		t.Errorf("profile rooms = %d, messages = %d; want 1 and 1", len(profile.Rooms), len(profile.RoomMessages))
	}

	if rec := doGet(router, "/user-profile/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing profile status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	router := newTestRouter(t)

	cookie := register(t, router, "leaver", "hunter2hunter2")

	rec := doGet(router, "/logout/", cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}

	// An authenticated requester visiting the login form is bounced home.
	rec = doGet(router, "/login/", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("authenticated login form: status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}
