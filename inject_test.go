package swaggerpage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLines(t *testing.T) {
	indent := strings.Repeat(" ", 8)

	tests := []struct {
		name      string
		validator *ValidatorURL
		methods   []SubmitMethod
		want      string
	}{
		{
			name: "nothing set",
			want: `layout: "StandaloneLayout"`,
		},
		{
			name:      "validator disabled",
			validator: ValidatorDisabled(),
			want:      "layout: \"StandaloneLayout\",\n" + indent + "validatorUrl: null",
		},
		{
			name:      "validator url",
			validator: ValidatorAt("foo"),
			want:      "layout: \"StandaloneLayout\",\n" + indent + `validatorUrl: "foo"`,
		},
		{
			name:      "validator url keeps ampersand",
			validator: ValidatorAt("https://v.local/check?a=1&b=2"),
			want:      "layout: \"StandaloneLayout\",\n" + indent + `validatorUrl: "https://v.local/check?a=1&b=2"`,
		},
		{
			name:    "empty submit methods",
			methods: []SubmitMethod{},
			want:    "layout: \"StandaloneLayout\",\n" + indent + "supportedSubmitMethods: []",
		},
		{
			name:    "submit methods",
			methods: []SubmitMethod{SubmitGet, SubmitPost},
			want:    "layout: \"StandaloneLayout\",\n" + indent + `supportedSubmitMethods: ["get","post"]`,
		},
		{
			name:      "both in order",
			validator: ValidatorDisabled(),
			methods:   []SubmitMethod{},
			want: "layout: \"StandaloneLayout\",\n" + indent + "validatorUrl: null,\n" +
				indent + "supportedSubmitMethods: []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := configLines(tt.validator, tt.methods)
			require.NoError(t, err)
			assert.Equal(t, tt.want, injectConfig(configAnchor, lines))
		})
	}
}

func TestInjectConfig(t *testing.T) {
	t.Run("missing anchor leaves content", func(t *testing.T) {
		content := `layout: "BaseLayout"`
		assert.Equal(t, content, injectConfig(content, []string{"validatorUrl: null"}))
	})

	t.Run("first anchor only", func(t *testing.T) {
		content := configAnchor + "\n" + configAnchor
		got := injectConfig(content, []string{"validatorUrl: null"})
		assert.Equal(t, 1, strings.Count(got, "validatorUrl"))
		assert.True(t, strings.HasSuffix(got, "\n"+configAnchor))
	})
}

func TestRewriteSpecURL(t *testing.T) {
	t.Run("replaced", func(t *testing.T) {
		got := rewriteSpecURL(`url: "https://petstore.swagger.io/v2/swagger.json"`, "http://host/swagger/swagger.json")
		assert.Equal(t, `url: "http://host/swagger/swagger.json"`, got)
	})

	t.Run("first occurrence only", func(t *testing.T) {
		got := rewriteSpecURL(specURLPlaceholder+specURLPlaceholder, "http://h/s.json")
		assert.Equal(t, `url: "http://h/s.json"`+specURLPlaceholder, got)
	})

	t.Run("no placeholder", func(t *testing.T) {
		assert.Equal(t, "plain", rewriteSpecURL("plain", "http://h/s.json"))
	})
}
