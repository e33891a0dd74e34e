// internal/common/validation/schema_test.go
package validation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/pkg/registry"
)

func shippedValidator(t *testing.T) *Validator {
	t.Helper()
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	v, err := NewValidator(reg)
	require.NoError(t, err)
	return v
}

func TestNewValidator_CompilesShippedSchemas(t *testing.T) {
	v := shippedValidator(t)
	assert.Equal(t, []string{"normalize-job-fields", "query-jobs", "query-user-activity", "recommend-jobs"}, v.TaskTypes())
}

func TestNewValidator_BadSchema(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{{
		ID:          "broken",
		TaskType:    "broken",
		InputSchema: map[string]interface{}{"type": 12},
	}}}
	_, err := NewValidator(reg)
	assert.Error(t, err)
}

func TestValidate_RecommendJobs(t *testing.T) {
	v := shippedValidator(t)

	tests := []struct {
		name       string
		doc        interface{}
		wantFields []string
	}{
		{
			name: "valid map",
			doc: map[string]interface{}{
				"email": "a@b.io", "skills": []interface{}{"python"},
				"latitude": 18.5, "longitude": 73.8, "experience": 2, "budget": 1000,
			},
		},
		{
			name: "valid bytes",
			doc:  []byte(`{"email":"a@b.io","skills":["sql"],"latitude":1.5,"longitude":2.5}`),
		},
		{
			name: "fractional experience",
			doc:  []byte(`{"email":"a@b.io","skills":["sql"],"latitude":1.5,"longitude":2.5,"experience":3.5}`),
		},
		{
			name:       "missing fields",
			doc:        []byte(`{"email":"a@b.io"}`),
			wantFields: []string{"skills", "latitude", "longitude"},
		},
		{
			name:       "wrong types",
			doc:        []byte(`{"email":"a@b.io","skills":"python","latitude":"north","longitude":2.5}`),
			wantFields: []string{"skills", "latitude"},
		},
		{
			name:       "empty skills",
			doc:        []byte(`{"email":"a@b.io","skills":[],"latitude":1.5,"longitude":2.5}`),
			wantFields: []string{"skills"},
		},
		{
			name:       "not json",
			doc:        []byte(`{"email":`),
			wantFields: []string{"(root)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate("recommend-jobs", tt.doc)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ElementsMatch(t, tt.wantFields, verr.Fields())
			assert.Contains(t, verr.Error(), "recommend-jobs")
		})
	}
}

func TestValidate_UnknownTaskTypeAccepts(t *testing.T) {
	v := shippedValidator(t)
	assert.NoError(t, v.Validate("no-such-task", []byte(`{"anything":true}`)))
}

func TestValidationError_Details(t *testing.T) {
	err := &ValidationError{TaskType: "t", Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "a", Message: "worse"},
		{Field: "b", Message: "missing"},
	}}
	assert.Equal(t, "a: bad; a: worse; b: missing", err.Details())
	assert.Equal(t, []string{"a", "b"}, err.Fields())
}

func TestDecode(t *testing.T) {
	v := shippedValidator(t)

	var in struct {
		Email string `json:"email"`
	}
	require.NoError(t, v.Decode("query-user-activity", `{"email":"a@b.io"}`, &in))
	assert.Equal(t, "a@b.io", in.Email)

	err := v.Decode("query-user-activity", `{}`, &in)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
	assert.Contains(t, err.(*apperrors.StandardError).Details, "email")

	var nilValidator *Validator
	err = nilValidator.Decode("query-user-activity", `{"email":`, &in)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
}
