package policy

import (
	"testing"

	"scaffold/internal/models"

	"github.com/stretchr/testify/assert"
)

var (
	anonymous = models.Anonymous
	member    = models.Identity{UserID: 2, Username: "reader"}
	admin     = models.Identity{UserID: 1, Username: "root", Admin: true}
)

func TestAuthorize_View(t *testing.T) {
	draft := &models.BlogPost{ID: 1, Published: false}
	live := &models.BlogPost{ID: 2, Published: true}

	tests := []struct {
		name     string
		identity models.Identity
		post     *models.BlogPost
		want     Decision
	}{
		{"anonymous live", anonymous, live, Decision{Allowed: true, Reason: ReasonOK}},
		{"anonymous draft", anonymous, draft, Decision{Reason: ReasonNotFound}},
		{"member live", member, live, Decision{Allowed: true, Reason: ReasonOK}},
		{"member draft", member, draft, Decision{Reason: ReasonNotFound}},
		{"admin live", admin, live, Decision{Allowed: true, Reason: ReasonOK}},
		{"admin draft", admin, draft, Decision{Allowed: true, Reason: ReasonOK}},
		{"unauthenticated admin flag is ignored", models.Identity{Admin: true}, draft, Decision{Reason: ReasonNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.identity, ActionView, tt.post))
		})
	}
}

func TestAuthorize_AdminActions(t *testing.T) {
	actions := []Action{
		ActionCreate,
		ActionUpdate,
		ActionDelete,
		ActionTogglePublish,
		ActionViewAdminList,
		ActionUploadAsset,
	}

	for _, action := range actions {
		t.Run(string(action), func(t *testing.T) {
			assert.Equal(t, ReasonLoginRequired, Authorize(anonymous, action, nil).Reason)
			assert.Equal(t, ReasonForbidden, Authorize(member, action, nil).Reason)
			assert.True(t, Can(admin, action, nil))
			assert.False(t, Can(member, action, &models.BlogPost{Published: true}))
		})
	}
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Decision{Allowed: true, Reason: ReasonOK}.Err("BlogPost", 1))
	assert.True(t, models.IsNotFound(Decision{Reason: ReasonNotFound}.Err("BlogPost", 1)))
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(Decision{Reason: ReasonForbidden}.Err("BlogPost", 1)))
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(Decision{Reason: ReasonLoginRequired}.Err("BlogPost", 1)))
}
