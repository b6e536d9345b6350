package dmmf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/internals/pkg/dmmf"
)

func loadFixture(t *testing.T) *dmmf.Document {
	data, err := os.ReadFile(filepath.Join("testdata", "dmmf.json"))
	require.NoError(t, err)
	doc, err := dmmf.Decode(data)
	require.NoError(t, err)
	return doc
}

func TestDecode(t *testing.T) {
	doc := loadFixture(t)

	require.Len(t, doc.Datamodel.Models, 2)
	require.Len(t, doc.Datamodel.Enums, 1)
	assert.Len(t, doc.Schema.OutputObjectTypes["prisma"], 1)
	assert.Equal(t, []string{"asc", "desc"}, doc.Schema.EnumTypes["prisma"][0].Values)
	assert.Equal(t, []string{"executeRaw", "queryRaw"}, doc.Mappings.OtherOperations.Write)

	query := doc.Schema.OutputObjectTypes["prisma"][0].Fields[0]
	assert.Equal(t, "findUniqueUser", query.Name)
	assert.Equal(t, "inputObjectTypes", query.Args[0].InputTypes[0].Location)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := dmmf.Decode([]byte("thread 'main' panicked at src/main.rs"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmmf.ErrInvalidDocument))
	assert.Contains(t, err.Error(), "panicked")

	_, err = dmmf.Decode([]byte(`{"datamodel": [}`))
	assert.True(t, errors.Is(err, dmmf.ErrInvalidDocument))

	_, err = dmmf.Decode(nil)
	assert.Error(t, err)
}

func TestLookups(t *testing.T) {
	doc := loadFixture(t)

	user, ok := doc.Model("User")
	require.True(t, ok)
	assert.Equal(t, "users", user.TableName())
	assert.Equal(t, []string{"id"}, user.IDFields())

	email, ok := user.Field("email")
	require.True(t, ok)
	assert.True(t, email.IsUnique)

	_, ok = user.Field("nope")
	assert.False(t, ok)

	var relations []string
	for _, f := range user.RelationFields() {
		relations = append(relations, f.Name)
	}
	assert.Equal(t, []string{"posts"}, relations)
	assert.Len(t, user.ScalarFields(), 5)

	post, ok := doc.Model("Post")
	require.True(t, ok)
	assert.Equal(t, "Post", post.TableName())
	assert.Equal(t, [][]string{{"title", "authorId"}}, post.UniqueFields)
	author, _ := post.Field("author")
	assert.True(t, author.IsRelation())
	assert.Equal(t, []string{"authorId"}, author.RelationFromFields)

	role, ok := doc.Enum("Role")
	require.True(t, ok)
	assert.Equal(t, "ADMIN", role.Values[1].Name)

	_, ok = doc.Model("Comment")
	assert.False(t, ok)

	m, ok := doc.Mapping("User")
	require.True(t, ok)
	assert.Equal(t, "createOneUser", m.Create)
}

func TestCompoundPrimaryKey(t *testing.T) {
	m := dmmf.Model{
		Name:       "Membership",
		Fields:     []dmmf.Field{{Name: "userId", Kind: dmmf.KindScalar}, {Name: "teamId", Kind: dmmf.KindScalar}},
		PrimaryKey: &dmmf.PrimaryKey{Fields: []string{"userId", "teamId"}},
	}
	assert.Equal(t, []string{"userId", "teamId"}, m.IDFields())

	m.PrimaryKey = nil
	assert.Nil(t, m.IDFields())
}

func TestDefaultFunc(t *testing.T) {
	doc := loadFixture(t)
	user, _ := doc.Model("User")

	createdAt, _ := user.Field("createdAt")
	def, ok := createdAt.DefaultFunc()
	require.True(t, ok)
	assert.Equal(t, "now", def.Name)
	assert.Empty(t, def.Args)

	role, _ := user.Field("role")
	_, ok = role.DefaultFunc()
	assert.False(t, ok)
	assert.Equal(t, "USER", role.Default)
}
