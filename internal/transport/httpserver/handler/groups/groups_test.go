package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	feelingdomain "colors-app-go/internal/domain/feeling"
	groupdomain "colors-app-go/internal/domain/group"
	"colors-app-go/internal/domain/ring"
	"colors-app-go/internal/domain/support"
	"colors-app-go/internal/transport/httpserver/middleware"
	"colors-app-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

const (
	groupID    = "0b9d7e3c-5a41-4c8e-8f26-3d7a1e9b5c01"
	otherGroup = "0b9d7e3c-5a41-4c8e-8f26-3d7a1e9b5c02"
	memberID   = "0b9d7e3c-5a41-4c8e-8f26-3d7a1e9b5c03"
)

// fakeGroups implements only what the tests call; other methods panic
// through the nil embedded interface.
type fakeGroups struct {
	GroupService
	invitePhone *string
	acceptErr   error
}

func (f *fakeGroups) GetGroup(ctx context.Context, userID, groupID string) (*groupdomain.Group, error) {
	return &groupdomain.Group{ID: groupID, Name: "Roommates", Emoji: "🏠", OwnerID: "user-1"}, nil
}

func (f *fakeGroups) ListMembers(ctx context.Context, userID, id string) ([]groupdomain.MemberProfile, error) {
	if id != groupID {
		return nil, groupdomain.ErrGroupNotFound
	}
	return []groupdomain.MemberProfile{
		{UserID: "user-1", Role: groupdomain.RoleOwner, DisplayName: "Ann"},
		{UserID: "user-2", Role: groupdomain.RoleMember, DisplayName: "Bob"},
		{UserID: "user-3", Role: groupdomain.RoleMember, DisplayName: "Cy"},
	}, nil
}

func (f *fakeGroups) CreateInvite(ctx context.Context, userID, groupID string, phone *string) (*groupdomain.Invite, error) {
	f.invitePhone = phone
	return &groupdomain.Invite{ID: "i-1", Code: "ABC234", GroupID: groupID, InviterID: userID, Status: groupdomain.InviteStatusPending}, nil
}

func (f *fakeGroups) AcceptInvite(ctx context.Context, userID, code string) (*groupdomain.Group, error) {
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return f.GetGroup(ctx, userID, groupID)
}

type fakeMoods struct{}

func (fakeMoods) LatestByMember(ctx context.Context, userID, groupID string) (map[string]feelingdomain.Feeling, error) {
	return map[string]feelingdomain.Feeling{
		"user-1": {UserID: "user-1", Color: feelingdomain.ColorGreen, Word: "great", Day: today},
		"user-2": {UserID: "user-2", Color: feelingdomain.ColorBlue, Word: "tired", Day: today.AddDate(0, 0, -2)},
	}, nil
}

func (fakeMoods) Today(ctx context.Context, userID string) (time.Time, error) {
	return today, nil
}

type fakeSupport struct {
	err error
}

func (f fakeSupport) Compose(ctx context.Context, senderID, groupID, recipientID string) (*support.Draft, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &support.Draft{RecipientID: recipientID, RecipientPhone: "+15550002222", Body: "hi", SMSURI: "sms:+15550002222?&body=hi"}, nil
}

func (fakeSupport) Catalog() support.Catalog {
	return support.DefaultCatalog()
}

type draftCounter struct {
	n int
}

func (c *draftCounter) SupportDrafted() {
	c.n++
}

func newRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), middleware.User{ID: "user-1"})))
		})
	})
	r.Post("/groups/{id}/invites", h.CreateInvite)
	r.Post("/invites/accept", h.AcceptInvite)
	r.Get("/groups/{id}/ring", h.GetRing)
	r.Get("/groups/{id}/ring.svg", h.GetRingSVG)
	r.Post("/groups/{id}/members/{user_id}/support", h.ComposeSupport)
	r.Delete("/groups/{id}/members/{user_id}", h.RemoveMember)
	r.Get("/support/templates", h.ListSupportTemplates)
	return r
}

func do(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestCreateInviteNormalizesPhoneAndSharesMessage(t *testing.T) {
	groups := &fakeGroups{}
	router := newRouter(New(groups, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))

	rec := do(router, http.MethodPost, "/groups/"+groupID+"/invites", `{"phone":"+1 (555) 000-2222"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, groups.invitePhone)
	assert.Equal(t, "+15550002222", *groups.invitePhone)

	var body inviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ABC234", body.Code)
	assert.Equal(t, "Join my Colors group 🏠 Roommates: colors://invite/ABC234", body.ShareMessage)
}

func TestCreateInviteRejectsBadPhone(t *testing.T) {
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))
	rec := do(router, http.MethodPost, "/groups/"+groupID+"/invites", `{"phone":"12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptInviteErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{groupdomain.ErrInviteUsed, http.StatusGone, "invite_used"},
		{groupdomain.ErrInviteExpired, http.StatusGone, "invite_expired"},
		{groupdomain.ErrGroupFull, http.StatusConflict, "group_full"},
		{groupdomain.ErrAlreadyMember, http.StatusConflict, "already_member"},
		{groupdomain.ErrInviteNotFound, http.StatusNotFound, "invite_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			router := newRouter(New(&fakeGroups{acceptErr: tc.err}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))
			rec := do(router, http.MethodPost, "/invites/accept", `{"code":"abc234"}`)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestGetRingMarksStaleAndEmpty(t *testing.T) {
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))

	rec := do(router, http.MethodGet, "/groups/"+groupID+"/ring?size=120", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ring.Ring
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(120), body.Size)
	require.Len(t, body.Slices, ring.Slices)

	assert.Equal(t, "green", body.Slices[0].Color)
	assert.False(t, body.Slices[0].Stale)
	assert.Equal(t, "blue", body.Slices[1].Color)
	assert.True(t, body.Slices[1].Stale)
	assert.Equal(t, "user-3", body.Slices[2].UserID)
	assert.Empty(t, body.Slices[2].Color)
	assert.True(t, body.Slices[5].Empty)
}

func TestGetRingValidatesSize(t *testing.T) {
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))
	rec := do(router, http.MethodGet, "/groups/"+groupID+"/ring?size=5000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRingForStranger(t *testing.T) {
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))
	rec := do(router, http.MethodGet, "/groups/"+otherGroup+"/ring", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "group_not_found", errorCode(t, rec))
}

func TestGetRingSVG(t *testing.T) {
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))

	rec := do(router, http.MethodGet, "/groups/"+groupID+"/ring.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
	assert.Contains(t, rec.Body.String(), "stale-hatch")
}

func TestComposeSupportCountsDrafts(t *testing.T) {
	counter := &draftCounter{}
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, counter, logger.Discard()))

	rec := do(router, http.MethodPost, "/groups/"+groupID+"/members/"+memberID+"/support", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, counter.n)

	var draft support.Draft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Equal(t, memberID, draft.RecipientID)
	assert.Equal(t, "sms:+15550002222?&body=hi", draft.SMSURI)
}

func TestComposeSupportErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{support.ErrSelfSupport, http.StatusBadRequest},
		{support.ErrRecipientNotFound, http.StatusNotFound},
		{support.ErrRecipientNoPhone, http.StatusConflict},
	}
	for _, tc := range cases {
		counter := &draftCounter{}
		router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{err: tc.err}, counter, logger.Discard()))
		rec := do(router, http.MethodPost, "/groups/"+groupID+"/members/"+memberID+"/support", "")
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Zero(t, counter.n)
	}
}

func TestListSupportTemplates(t *testing.T) {
	router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, nil, logger.Discard()))

	rec := do(router, http.MethodGet, "/support/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog support.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.NotEmpty(t, catalog.Topics)
	assert.NotEmpty(t, catalog.Fallback)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		code   string
	}{
		{"ring", http.MethodGet, "/groups/g-1/ring", "group_not_found"},
		{"ring svg", http.MethodGet, "/groups/not-a-uuid/ring.svg", "group_not_found"},
		{"invite", http.MethodPost, "/groups/1234/invites", "group_not_found"},
		{"support group", http.MethodPost, "/groups/g-1/members/" + memberID + "/support", "group_not_found"},
		{"support member", http.MethodPost, "/groups/" + groupID + "/members/user-2/support", "member_not_found"},
		{"remove member", http.MethodDelete, "/groups/" + groupID + "/members/user-2", "member_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			counter := &draftCounter{}
			router := newRouter(New(&fakeGroups{}, fakeMoods{}, fakeSupport{}, counter, logger.Discard()))
			rec := do(router, tc.method, tc.path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
			assert.Zero(t, counter.n)
		})
	}
}
