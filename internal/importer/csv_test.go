package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow-pms/backend/internal/storage"
)

func newImporterForTest(t *testing.T) (*Importer, *storage.PropertyRepository) {
	t.Helper()

	db, err := storage.NewTestDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))

	properties := storage.NewPropertyRepository(db)
	return NewImporter(properties), properties
}

func TestImport(t *testing.T) {
	imp, properties := newImporterForTest(t)

	csvData := `NICKNAME,TITLE,TYPE_OF_UNIT,ADDRESS,TAGS
cabin-1,Lakeside Cabin,house,1 Lake Rd,"pets, lakefront"
loft-2,City Loft,apartment,2 Main St,
`
	result, err := imp.Import(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.PropertiesCount)
	assert.Empty(t, result.Errors)

	p, err := properties.GetByName(context.Background(), "cabin-1")
	require.NoError(t, err)
	assert.Equal(t, "Lakeside Cabin", p.Title)
	assert.Equal(t, "house", p.PropertyType)
	assert.Equal(t, "1 Lake Rd", p.Address)
	assert.Equal(t, []string{"pets", "lakefront"}, p.Tags)
	assert.True(t, p.Active)
	assert.True(t, strings.HasPrefix(p.RemoteID, "csv-"), "CSV rows get a synthetic remote id")
}

func TestImport_MalformedRowIsSkipped(t *testing.T) {
	imp, properties := newImporterForTest(t)

	var sb strings.Builder
	sb.WriteString("NICKNAME,TITLE,TYPE_OF_UNIT,ADDRESS,TAGS\n")
	for i := 0; i < 10; i++ {
		if i == 4 {
			// Wrong column count
			sb.WriteString("broken-row,only-two-fields\n")
			continue
		}
		fmt.Fprintf(&sb, "unit-%d,Unit %d,apartment,%d Main St,\n", i, i, i)
	}

	result, err := imp.Import(context.Background(), strings.NewReader(sb.String()))
	require.NoError(t, err, "one bad row must not abort the import")
	assert.Equal(t, 9, result.PropertiesCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 6, result.Errors[0].Line, "lines are 1-based including the header")

	count, err := properties.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, count)
}

func TestImport_UpsertsByNickname(t *testing.T) {
	imp, properties := newImporterForTest(t)

	first := "NICKNAME,TITLE,ADDRESS\ncabin-1,Old Title,1 Lake Rd\n"
	_, err := imp.Import(context.Background(), strings.NewReader(first))
	require.NoError(t, err)

	second := "NICKNAME,TITLE,ADDRESS\ncabin-1,New Title,2 Lake Rd\n"
	result, err := imp.Import(context.Background(), strings.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, 1, result.PropertiesCount)

	count, err := properties.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-importing must update, not duplicate")

	p, err := properties.GetByName(context.Background(), "cabin-1")
	require.NoError(t, err)
	assert.Equal(t, "New Title", p.Title)
	assert.Equal(t, "2 Lake Rd", p.Address)
}

func TestImport_TitleFallbackAndBlankRows(t *testing.T) {
	imp, _ := newImporterForTest(t)

	csvData := `NICKNAME,TITLE
,Only Title Here
,
`
	result, err := imp.Import(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, result.PropertiesCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "neither NICKNAME nor TITLE")
}

func TestImport_HeaderVariants(t *testing.T) {
	imp, properties := newImporterForTest(t)

	// BOM-prefixed lowercase header with the spaced unit-type column
	csvData := "\ufeffnickname,type of unit\nstudio-9,studio\n"

	result, err := imp.Import(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, result.PropertiesCount)

	p, err := properties.GetByName(context.Background(), "studio-9")
	require.NoError(t, err)
	assert.Equal(t, "studio", p.PropertyType)
}

func TestImport_EmptyFile(t *testing.T) {
	imp, _ := newImporterForTest(t)

	_, err := imp.Import(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
