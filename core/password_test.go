package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordPolicyTag(t *testing.T) {
	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "Ab1#", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Gr@ss h0pper", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "no upper", pwd: "gr@ssh0pper", want: pwdComplexityTag},
		{name: "no special", pwd: "Grassh0pper", want: pwdComplexityTag},
		{name: "no digit", pwd: "Gr@sshopper", want: pwdComplexityTag},
		{name: "like the name", pwd: "Adaobi#2024", attrs: []string{"", "adaobi2024"}, want: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", want: pwdNoCommonTag},
		{name: "acceptable", pwd: "Gr@ssh0pper-25", attrs: []string{"Ada Obi", "210012"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PasswordPolicyTag(tc.pwd, tc.attrs...))
		})
	}
}

func TestCheckPassword(t *testing.T) {
	require.NoError(t, CheckPassword("Gr@ssh0pper-25"))

	err := CheckPassword("short")
	require.IsType(t, &ValidationError{}, err)
	vErr := err.(*ValidationError)
	assert.Equal(t, "password must contain at least 8 characters", vErr.Error())
	assert.Equal(t, []FieldError{{Field: "password", Error: pwdMinLenText}}, vErr.Fields)

	err = CheckPassword("P@ssw0rd")
	require.Error(t, err)
	assert.Equal(t, pwdNoCommonText, err.Error())
}

func TestCommonPasswordsLoaded(t *testing.T) {
	require.NotEmpty(t, commonPasswords)
	for _, pwd := range commonPasswords {
		assert.Equal(t, pwd, CleanString(pwd, true))
	}
}

func TestPasswordTranslationsRegistered(t *testing.T) {
	for tag, want := range map[string]string{
		pwdMinLenTag:     pwdMinLenText,
		pwdNoSpaceTag:    pwdNoSpaceText,
		pwdNotAllNumTag:  pwdNotAllNumText,
		pwdComplexityTag: pwdComplexityText,
		pwdAttrSimTag:    pwdAttrSimText,
		pwdNoCommonTag:   pwdNoCommonText,
	} {
		got, err := Translator.T(tag, "password", "")
		require.NoError(t, err, tag)
		assert.Equal(t, want, got)
	}
}
