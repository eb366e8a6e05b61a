package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nandpal/addr"
)

const wellFormedDoc = `<pal>
  <channel>4</channel> <way>2</way> <die>2</die>
  <plane>1</plane> <block>512</block> <page>256</page>
  <pageSize>8192</pageSize> <superPageSize>8192</superPageSize>
  <addrSeq>0,1,2,3,4,5</addrSeq>
  <stripe factor="3" position="1"/>
</pal>`

func TestDecodeParsesWellFormedDocument(t *testing.T) {
	p, seq, stripe, err := decode(strings.NewReader(wellFormedDoc))
	assert.NoError(t, err)
	assert.Equal(t, Parameter{Channel: 4, Way: 2, Die: 2, Plane: 1, Block: 512, Page: 256, PageSize: 8192, SuperPageSize: 8192}, p)
	assert.Equal(t, [6]addr.Axis{addr.AxisChannel, addr.AxisWay, addr.AxisDie, addr.AxisPlane, addr.AxisBlock, addr.AxisPage}, seq)
	assert.Equal(t, &addr.Stripe{Factor: 3, Position: 1}, stripe)
}

func TestDecodeDefaultsAddrSeqToIdentityWhenAbsent(t *testing.T) {
	const doc = `<pal>
  <channel>1</channel> <way>1</way> <die>1</die>
  <plane>1</plane> <block>1</block> <page>1</page>
  <pageSize>1</pageSize> <superPageSize>1</superPageSize>
</pal>`
	_, seq, stripe, err := decode(strings.NewReader(doc))
	assert.NoError(t, err)
	assert.Equal(t, [6]addr.Axis{0, 1, 2, 3, 4, 5}, seq)
	assert.Nil(t, stripe)
}

func TestDecodeRejectsMalformedXML(t *testing.T) {
	_, _, _, err := decode(strings.NewReader(`<pal><channel>4</pal>`))
	assert.Error(t, err)
}

func TestDecodeRejectsAddrSeqWithUnexpectedCharacter(t *testing.T) {
	const doc = `<pal>
  <channel>1</channel> <way>1</way> <die>1</die>
  <plane>1</plane> <block>1</block> <page>1</page>
  <pageSize>1</pageSize> <superPageSize>1</superPageSize>
  <addrSeq>0,1,x,3,4,5</addrSeq>
</pal>`
	_, _, _, err := decode(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestParseAddrSeqRejectsWrongEntryCount(t *testing.T) {
	_, err := parseAddrSeq("0,1,2,3,4")
	assert.Error(t, err)
}

func TestParseAddrSeqRejectsTooManyEntries(t *testing.T) {
	_, err := parseAddrSeq("0,1,2,3,4,5,0")
	assert.Error(t, err)
}

func TestParseAddrSeqRejectsEmptyEntry(t *testing.T) {
	_, err := parseAddrSeq("0,1,,3,4,5")
	assert.Error(t, err)
}

func TestParseAddrSeqIgnoresSpaces(t *testing.T) {
	seq, err := parseAddrSeq("5, 4, 3, 2, 1, 0")
	assert.NoError(t, err)
	assert.Equal(t, [6]addr.Axis{5, 4, 3, 2, 1, 0}, seq)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, _, _, err := Load("/nonexistent/path/pal.xml")
	assert.Error(t, err)
}
