package config

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"

	"nandpal/addr"
)

// document is the XML shape config.Load reads:
//
//	<pal>
//	  <channel>4</channel> <way>2</way> <die>2</die>
//	  <plane>1</plane> <block>512</block> <page>256</page>
//	  <pageSize>8192</pageSize> <superPageSize>8192</superPageSize>
//	  <addrSeq>0,1,2,3,4,5</addrSeq>
//	  <stripe factor="1" position="0"/>  <!-- optional -->
//	</pal>
//
// This is the one ambient concern in this repository built directly on the
// standard library (encoding/xml): nothing in the example corpus carries a
// config/XML library the way grailbio/base carries log, so there is no
// third-party idiom to imitate here.
type document struct {
	XMLName       xml.Name `xml:"pal"`
	Channel       uint32   `xml:"channel"`
	Way           uint32   `xml:"way"`
	Die           uint32   `xml:"die"`
	Plane         uint32   `xml:"plane"`
	Block         uint32   `xml:"block"`
	Page          uint32   `xml:"page"`
	PageSize      uint32   `xml:"pageSize"`
	SuperPageSize uint32   `xml:"superPageSize"`
	AddrSeq       string   `xml:"addrSeq"`
	Stripe        *struct {
		Factor   uint32 `xml:"factor,attr"`
		Position int    `xml:"position,attr"`
	} `xml:"stripe"`
}

// Load reads path as the XML document above and returns the Parameter, the
// decoded axis permutation, and an optional stripe descriptor, or a wrapped
// ErrInvalidParameter if the permutation is malformed.
func Load(path string) (Parameter, [6]addr.Axis, *addr.Stripe, error) {
	f, err := os.Open(path)
	if err != nil {
		return Parameter{}, [6]addr.Axis{}, nil, errors.Wrapf(err, "config: opening %s", path)
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.Reader) (Parameter, [6]addr.Axis, *addr.Stripe, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Parameter{}, [6]addr.Axis{}, nil, errors.Wrap(err, "config: decoding XML")
	}

	p := Parameter{
		Channel: doc.Channel, Way: doc.Way, Die: doc.Die,
		Plane: doc.Plane, Block: doc.Block, Page: doc.Page,
		PageSize: doc.PageSize, SuperPageSize: doc.SuperPageSize,
	}

	seq, err := parseAddrSeq(doc.AddrSeq)
	if err != nil {
		return Parameter{}, [6]addr.Axis{}, nil, err
	}

	var stripe *addr.Stripe
	if doc.Stripe != nil {
		stripe = &addr.Stripe{Factor: doc.Stripe.Factor, Position: doc.Stripe.Position}
	}
	return p, seq, stripe, nil
}

func parseAddrSeq(s string) ([6]addr.Axis, error) {
	var seq [6]addr.Axis
	if s == "" {
		for i := range seq {
			seq[i] = addr.Axis(i)
		}
		return seq, nil
	}

	var idx int
	var cur uint32
	haveDigit := false
	flush := func() error {
		if !haveDigit {
			return invalid("addrSeq entry %d is empty", idx)
		}
		if idx >= 6 {
			return invalid("addrSeq has more than 6 entries")
		}
		seq[idx] = addr.Axis(cur)
		idx++
		cur, haveDigit = 0, false
		return nil
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + uint32(r-'0')
			haveDigit = true
		case r == ',':
			if err := flush(); err != nil {
				return seq, err
			}
		case r == ' ':
			// ignore
		default:
			return seq, invalid("addrSeq contains unexpected character %q", r)
		}
	}
	if err := flush(); err != nil {
		return seq, err
	}
	if idx != 6 {
		return seq, invalid("addrSeq has %d entries, want 6", idx)
	}
	return seq, nil
}
