package latimes

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordScanner_SplitsOnDocEnd(t *testing.T) {
	stream := string(testRecord("LA010189-0001", "First", "alpha")) +
		string(testRecord("LA010189-0002", "Second", "beta"))

	sc := NewRecordScanner(strings.NewReader(stream))

	require.True(t, sc.Scan())
	assert.Contains(t, string(sc.Record()), "LA010189-0001")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(sc.Record())), "</DOC>"))

	require.True(t, sc.Scan())
	assert.Contains(t, string(sc.Record()), "LA010189-0002")

	assert.False(t, sc.Scan())
	assert.NoError(t, sc.Err())
}

func TestRecordScanner_KeepsRawBytesVerbatim(t *testing.T) {
	record := testRecord("LA010189-0001", "Headline", "Some   odd\tspacing")

	sc := NewRecordScanner(strings.NewReader(string(record)))
	require.True(t, sc.Scan())
	assert.Equal(t, record, sc.Record())
}

func TestRecordScanner_UnterminatedRecord(t *testing.T) {
	sc := NewRecordScanner(strings.NewReader("<DOC>\n<DOCNO> LA010189-0001 </DOCNO>\n"))
	assert.False(t, sc.Scan())
	assert.ErrorIs(t, sc.Err(), ErrMalformedRecord)
}

func TestRecordScanner_TrailingWhitespaceOK(t *testing.T) {
	stream := string(testRecord("LA010189-0001", "", "alpha")) + "\n  \n"
	sc := NewRecordScanner(strings.NewReader(stream))

	require.True(t, sc.Scan())
	assert.False(t, sc.Scan())
	assert.NoError(t, sc.Err())
}

func TestParseRecord_AllFields(t *testing.T) {
	raw := []byte("<DOC>\n" +
		"<DOCNO> LA010189-0001 </DOCNO>\n" +
		"<HEADLINE>\n<P>\nNew Year\n</P>\n<P>\nBegins Today\n</P>\n</HEADLINE>\n" +
		"<TEXT>\n<P>\nThe quick brown fox jumps.\n</P>\n</TEXT>\n" +
		"<GRAPHIC>\n<P>\nPhoto of a fox.\n</P>\n</GRAPHIC>\n" +
		"</DOC>\n")

	doc, err := ParseRecord(raw)
	require.NoError(t, err)

	assert.Equal(t, "LA010189-0001", doc.DocNo)
	assert.Equal(t, "New Year Begins Today", doc.Headline)
	assert.Contains(t, doc.Text, "The quick brown fox jumps.")
	assert.NotContains(t, doc.Text, "<P>")
	assert.Contains(t, doc.Graphic, "Photo of a fox.")
	assert.Equal(t, raw, doc.Raw)
}

func TestParseRecord_OptionalFieldsAbsent(t *testing.T) {
	doc, err := ParseRecord([]byte("<DOC>\n<DOCNO> LA010189-0001 </DOCNO>\n</DOC>\n"))
	require.NoError(t, err)

	assert.Empty(t, doc.Headline)
	assert.Empty(t, doc.Text)
	assert.Empty(t, doc.Graphic)
}

func TestParseRecord_MissingDocNo(t *testing.T) {
	_, err := ParseRecord([]byte("<DOC>\n<TEXT>no id here</TEXT>\n</DOC>\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseRecord_WrongDocNoLength(t *testing.T) {
	_, err := ParseRecord([]byte("<DOC>\n<DOCNO> LA0101 </DOCNO>\n</DOC>\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseRecord([]byte("<DOC>\n<DOCNO> LA010189-00001X </DOCNO>\n</DOC>\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestTextContent_StripsNestedTags(t *testing.T) {
	got := textContent([]byte("one <P>two</P> three"))
	assert.Equal(t, "one two three", got)
	assert.Equal(t, "plain", textContent([]byte("plain")))
}

func TestFirstElement_TakesFirstOnly(t *testing.T) {
	data := []byte("<TEXT>first</TEXT><TEXT>second</TEXT>")
	inner, ok := firstElement(data, "TEXT")
	require.True(t, ok)
	assert.Equal(t, "first", string(inner))

	_, ok = firstElement(data, "GRAPHIC")
	assert.False(t, ok)
}

func TestParseRecord_ErrorIsMalformed(t *testing.T) {
	_, err := ParseRecord([]byte("<DOC></DOC>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}
