package metamodel

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	ID      int64
	Email   string
	Nick    *string
	Active  bool
	Created time.Time
	Score   float64
	Tags    []string
}

var accounts = NewEntity[account]("Account")

func TestNewEntityDefaults(t *testing.T) {
	assert.Equal(t, "Account", accounts.Name())
	assert.Equal(t, "account", accounts.Table())
	assert.Equal(t, DefaultKey, accounts.Key())

	custom := NewEntity[account]("Account", WithTable("accounts"), WithKey("account_id"))
	assert.Equal(t, "accounts", custom.Table())
	assert.Equal(t, "account_id", custom.Key())
}

func TestAttributeMetadata(t *testing.T) {
	email := NewAttribute(accounts, "email", func(a *account) string { return a.Email },
		WithColumn("email_address"))

	assert.Equal(t, "email", email.Name())
	assert.Equal(t, "email_address", email.Column())
	assert.Equal(t, "Account", email.Owner())
	assert.Equal(t, reflect.TypeOf(""), email.ValueType())
	assert.Equal(t, KindString, email.Kind())
	assert.False(t, email.Nullable())
	assert.Equal(t, "Account.email", email.String())

	_, isAssoc := email.Association()
	assert.False(t, isAssoc)
}

func TestAttributeExtract(t *testing.T) {
	nick := NewNullable(accounts, "nick", func(a *account) (string, bool) {
		if a.Nick == nil {
			return "", false
		}
		return *a.Nick, true
	})
	name := "ace"

	assert.True(t, nick.Nullable())
	assert.Nil(t, nick.Extract(&account{}))
	assert.Equal(t, "ace", nick.Extract(&account{Nick: &name}))

	v, ok := nick.Value(&account{Nick: &name})
	require.True(t, ok)
	assert.Equal(t, "ace", v)

	_, ok = nick.Value(nil)
	assert.False(t, ok, "nil entity reads as NULL")
}

func TestAttributeWithoutAccessor(t *testing.T) {
	opaque := NewAttribute[account, int64](accounts, "id", nil)
	assert.Nil(t, opaque.Extract(&account{ID: 9}))
}

func TestToOneAssociation(t *testing.T) {
	owner := NewAttribute(accounts, "owner", func(a *account) int64 { return a.ID },
		WithColumn("owner_id"), References("users", ""))

	assoc, ok := owner.Association()
	require.True(t, ok)
	assert.Equal(t, Association{
		Name:        "owner",
		Target:      "users",
		TargetKey:   DefaultKey,
		LocalColumn: "owner_id",
	}, assoc)
}

func TestPlural(t *testing.T) {
	tags := NewPlural(accounts, "tags", "account_tags", "account_id",
		func(a *account) []string { return a.Tags })

	assoc, ok := tags.Association()
	require.True(t, ok)
	assert.True(t, assoc.Plural)
	assert.Equal(t, "account_tags", assoc.Target)
	assert.Equal(t, "account_id", assoc.MappedBy)
	assert.Equal(t, "Account", tags.Owner())
	assert.Equal(t, "Account.tags", tags.String())
	assert.Equal(t, []string{"x"}, tags.Values(&account{Tags: []string{"x"}}))
	assert.Nil(t, tags.Values(nil))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		attr     interface{ Kind() Kind }
		expected Kind
		ordered  bool
	}{
		{NewAttribute(accounts, "id", func(a *account) int64 { return a.ID }), KindInt, true},
		{NewAttribute(accounts, "active", func(a *account) bool { return a.Active }), KindBool, false},
		{NewAttribute(accounts, "created", func(a *account) time.Time { return a.Created }), KindTime, true},
		{NewAttribute(accounts, "score", func(a *account) float64 { return a.Score }), KindFloat, true},
		{NewAttribute(accounts, "tags", func(a *account) []string { return a.Tags }), KindOther, false},
		{NewAttribute(accounts, "n", func(a *account) uint16 { return 1 }), KindUint, true},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.attr.Kind())
			assert.Equal(t, tt.ordered, tt.attr.Kind().Ordered())
		})
	}
	assert.Equal(t, KindOther, KindOf(nil))
}

func TestIsNil(t *testing.T) {
	var typed *Attribute[account, string]
	var iface Attr[account] = typed

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(typed))
	assert.True(t, IsNil(iface), "interface holding a typed nil pointer")
	assert.False(t, IsNil(accounts))
	assert.False(t, IsNil(3))
}
