package latency

import (
	"encoding/json"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"nandpal/pal"
)

// overrideDoc is the on-disk/on-S3 shape used to replace a subset of a
// Table's phase numbers, e.g. to load a vendor-supplied datasheet without
// recompiling.
type overrideDoc struct {
	Technology string `json:"technology"`
	ReadDMA0   *int64 `json:"readDMA0,omitempty"`
	ReadMEM    *int64 `json:"readMEM,omitempty"`
	ReadDMA1   *int64 `json:"readDMA1,omitempty"`
	WriteDMA0  *int64 `json:"writeDMA0,omitempty"`
	WriteMEM   *int64 `json:"writeMEM,omitempty"`
	WriteDMA1  *int64 `json:"writeDMA1,omitempty"`
	EraseDMA0  *int64 `json:"eraseDMA0,omitempty"`
	EraseMEM   *int64 `json:"eraseMEM,omitempty"`
	EraseDMA1  *int64 `json:"eraseDMA1,omitempty"`
}

func technologyFromName(name string) (Technology, error) {
	switch name {
	case "SLC", "slc":
		return SLC, nil
	case "MLC", "mlc":
		return MLC, nil
	case "TLC", "tlc":
		return TLC, nil
	default:
		return 0, errors.Errorf("latency: unknown technology %q", name)
	}
}

func applyOverride(t *Table, doc overrideDoc) {
	set := func(dst *pal.Tick, v *int64) {
		if v != nil {
			*dst = pal.Tick(*v)
		}
	}
	set(&t.d.readDMA0, doc.ReadDMA0)
	set(&t.d.readMEM, doc.ReadMEM)
	set(&t.d.readDMA1, doc.ReadDMA1)
	set(&t.d.writeDMA0, doc.WriteDMA0)
	set(&t.d.writeMEM, doc.WriteMEM)
	set(&t.d.writeDMA1, doc.WriteDMA1)
	set(&t.d.eraseDMA0, doc.EraseDMA0)
	set(&t.d.eraseMEM, doc.EraseMEM)
	set(&t.d.eraseDMA1, doc.EraseDMA1)
}

func decodeOverride(r io.Reader) (*Table, error) {
	var doc overrideDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "latency: decoding override document")
	}
	tech, err := technologyFromName(doc.Technology)
	if err != nil {
		return nil, err
	}
	t := NewTable(tech)
	applyOverride(t, doc)
	return t, nil
}

// FileLoader reads a latency override document from a local JSON file: the
// local-file counterpart of S3Loader. S3Loader does not fall back to it.
type FileLoader struct {
	Path string
}

// Load opens and decodes the override document.
func (l FileLoader) Load() (*Table, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "latency: opening %s", l.Path)
	}
	defer f.Close()
	return decodeOverride(f)
}

// S3Loader fetches the same JSON override document from an S3 object,
// using aws-sdk-go the way grailbio/bio/encoding/bampair and
// cmd/bio-pamtool's checksum command reach for an AWS session collaborator
// rather than hand-rolling an HTTP client.
type S3Loader struct {
	Bucket, Key string
	Session     *session.Session
}

// Load fetches and decodes the override document.
func (l S3Loader) Load() (*Table, error) {
	sess := l.Session
	if sess == nil {
		var err error
		sess, err = session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "latency: creating AWS session")
		}
	}
	out, err := s3.New(sess).GetObject(&s3.GetObjectInput{
		Bucket: aws.String(l.Bucket),
		Key:    aws.String(l.Key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "latency: fetching s3://%s/%s", l.Bucket, l.Key)
	}
	defer out.Body.Close()
	return decodeOverride(out.Body)
}
