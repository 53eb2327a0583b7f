package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/studygroups-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := Setup(); err != nil {
		panic(err)
	}
}

func validate(t *testing.T, obj interface{}) map[string]string {
	t.Helper()
	err := binding.Validator.ValidateStruct(obj)
	if err == nil {
		return nil
	}
	return TranslateErrors(err)
}

func TestCreateStudyGroupRequest_Messages(t *testing.T) {
	tests := []struct {
		name  string
		req   model.CreateStudyGroupRequest
		field string
		want  string
	}{
		{
			name:  "name too short",
			req:   model.CreateStudyGroupRequest{Name: "abcd", Subject: "Math"},
			field: "name",
			want:  "'name' must be between 5 and 30 characters. You entered 4 characters.",
		},
		{
			name:  "name too long",
			req:   model.CreateStudyGroupRequest{Name: strings.Repeat("x", 31), Subject: "Math"},
			field: "name",
			want:  "'name' must be between 5 and 30 characters. You entered 31 characters.",
		},
		{
			name:  "name empty",
			req:   model.CreateStudyGroupRequest{Name: "", Subject: "Math"},
			field: "name",
			want:  "'name' must not be empty.",
		},
		{
			name:  "name whitespace only",
			req:   model.CreateStudyGroupRequest{Name: "      ", Subject: "Math"},
			field: "name",
			want:  "'name' must not be empty.",
		},
		{
			name:  "subject not in enum",
			req:   model.CreateStudyGroupRequest{Name: "MathMates", Subject: "Biology"},
			field: "subject",
			want:  "Specified subject should be one of the following values: 'Math,Chemistry,Physics'.",
		},
		{
			name:  "subject wrong case",
			req:   model.CreateStudyGroupRequest{Name: "MathMates", Subject: "math"},
			field: "subject",
			want:  "Specified subject should be one of the following values: 'Math,Chemistry,Physics'.",
		},
		{
			name:  "subject missing",
			req:   model.CreateStudyGroupRequest{Name: "MathMates"},
			field: "subject",
			want:  "'subject' must not be empty.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validate(t, &tt.req)
			require.NotNil(t, fields)
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestCreateStudyGroupRequest_Boundaries(t *testing.T) {
	for _, name := range []string{"abcde", strings.Repeat("y", 30), "Ünïcø"} {
		req := model.CreateStudyGroupRequest{Name: name, Subject: "Physics"}
		assert.Nil(t, validate(t, &req), name)
	}
}

func TestMembershipRequest_Messages(t *testing.T) {
	req := model.MembershipRequest{StudyGroupID: 0, UserID: -3}

	fields := validate(t, &req)

	require.Len(t, fields, 2)
	assert.Equal(t, "'studyGroupId' must be greater than '0'.", fields["studyGroupId"])
	assert.Equal(t, "'userId' must be greater than '0'.", fields["userId"])
}

func TestBindQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantKeys []string
	}{
		{name: "valid", query: "studyGroupId=1&userId=2"},
		{name: "missing ids", query: "", wantKeys: []string{"studyGroupId", "userId"}},
		{name: "non numeric", query: "studyGroupId=abc&userId=2", wantKeys: []string{"detail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPut, "/studygroup/join?"+tt.query, nil)

			var req model.MembershipRequest
			fields := BindQuery(c, &req)

			if tt.wantKeys == nil {
				assert.Nil(t, fields)
				assert.Equal(t, 1, req.StudyGroupID)
				assert.Equal(t, 2, req.UserID)
				return
			}
			for _, k := range tt.wantKeys {
				assert.Contains(t, fields, k)
			}
		})
	}
}

func TestBind_MalformedJSON(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/studygroup/create", strings.NewReader("{"))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.CreateStudyGroupRequest
	fields := Bind(c, &req)

	assert.Contains(t, fields, "detail")
}

func TestTranslateErrors_PlainError(t *testing.T) {
	fields := TranslateErrors(errors.New("boom"))

	assert.Equal(t, map[string]string{"detail": "boom"}, fields)
}

func TestSetup_Idempotent(t *testing.T) {
	assert.NoError(t, Setup())
	assert.NoError(t, Setup())
}

func TestRegister_FreshValidator(t *testing.T) {
	v := govalidator.New()
	v.SetTagName("binding")

	tr, err := register(v)
	require.NoError(t, err)
	require.NotNil(t, tr)

	err = v.Struct(model.CreateStudyGroupRequest{Name: "abc", Subject: "Biology"})
	var ve govalidator.ValidationErrors
	require.ErrorAs(t, err, &ve)

	got := map[string]string{}
	for _, fe := range ve {
		got[fe.Field()] = fe.Translate(tr)
	}
	assert.Equal(t, "'name' must be between 5 and 30 characters. You entered 3 characters.", got["name"])
	assert.Equal(t, "Specified subject should be one of the following values: 'Math,Chemistry,Physics'.", got["subject"])
}
