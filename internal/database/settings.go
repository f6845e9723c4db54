package database

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// Settings is the effective client configuration derived from a
// connection string.
type Settings struct {
	TLSEnabled          bool
	InvalidHostsAllowed bool
	ReadConcern         string
	WriteConcern        string
	ReadPreference      string
}

// DescribeSettings parses uri the same way Connect does and reports the
// resulting TLS, concern and read preference settings. Nothing is dialed,
// but mongodb+srv URIs still trigger a DNS lookup.
func DescribeSettings(uri string) (Settings, error) {
	opts := options.Client().ApplyURI(uri)
	if err := opts.Validate(); err != nil {
		return Settings{}, fmt.Errorf("parse uri: %w", err)
	}

	s := Settings{
		ReadPreference: describeReadPref(opts.ReadPreference),
	}
	if opts.TLSConfig != nil {
		s.TLSEnabled = true
		s.InvalidHostsAllowed = opts.TLSConfig.InsecureSkipVerify
	}

	var err error
	if s.ReadConcern, err = describeReadConcern(opts.ReadConcern); err != nil {
		return Settings{}, err
	}
	if s.WriteConcern, err = describeWriteConcern(opts.WriteConcern); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func describeReadConcern(rc *readconcern.ReadConcern) (string, error) {
	doc := bson.D{}
	if rc != nil && rc.Level != "" {
		doc = append(doc, bson.E{Key: "level", Value: rc.Level})
	}
	return extJSON(doc)
}

func describeWriteConcern(wc *writeconcern.WriteConcern) (string, error) {
	doc := bson.D{}
	if wc != nil {
		if wc.W != nil {
			doc = append(doc, bson.E{Key: "w", Value: wc.W})
		}
		if wc.Journal != nil {
			doc = append(doc, bson.E{Key: "j", Value: *wc.Journal})
		}
	}
	return extJSON(doc)
}

func describeReadPref(rp *readpref.ReadPref) string {
	if rp == nil {
		return readpref.PrimaryMode.String()
	}
	return rp.Mode().String()
}

func extJSON(doc bson.D) (string, error) {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(raw), nil
}
