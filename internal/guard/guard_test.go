package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pearldata/pearlctl/internal/app/models"
)

type fakeSubject struct {
	authed bool
	role   models.Role
}

func (f fakeSubject) IsAuthenticated() bool { return f.authed }

func (f fakeSubject) CurrentRole() (models.Role, bool) {
	if !f.authed {
		return "", false
	}
	return f.role, true
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		subject  fakeSubject
		required models.Role
		want     Decision
	}{
		{
			name:     "unauthenticated goes to login",
			subject:  fakeSubject{},
			required: models.RoleAdmin,
			want:     RedirectLogin,
		},
		{
			name:     "wrong role goes to unauthorized",
			subject:  fakeSubject{authed: true, role: models.RoleStudent},
			required: models.RoleAdmin,
			want:     RedirectUnauthorized,
		},
		{
			name:     "matching role allowed",
			subject:  fakeSubject{authed: true, role: models.RoleFaculty},
			required: models.RoleFaculty,
			want:     Allow,
		},
		{
			name:     "empty required role needs only authentication",
			subject:  fakeSubject{authed: true, role: models.RoleStudent},
			required: "",
			want:     Allow,
		},
		{
			name:     "empty required role still needs a session",
			subject:  fakeSubject{},
			required: "",
			want:     RedirectLogin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.subject, tt.required))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect:login", RedirectLogin.String())
	assert.Equal(t, "redirect:unauthorized", RedirectUnauthorized.String())
}
