// Package logline extracts structured fields from raw access log lines.
package logline

import (
	"regexp"
	"strconv"
)

// Field extraction patterns for the nginx access log format used by the
// blue/green proxy. Each field is matched independently so a partially
// written line still yields whatever fields it does carry.
var (
	rePool           = regexp.MustCompile(`pool=(\S+)`)
	reRelease        = regexp.MustCompile(`release=(\S+)`)
	reStatus         = regexp.MustCompile(`\s(\d{3})\s`)
	reUpstreamStatus = regexp.MustCompile(`upstream_status=(\S+)`)
	reUpstreamAddr   = regexp.MustCompile(`upstream_addr=(\S+)`)
	reRequestTime    = regexp.MustCompile(`request_time=(\S+)`)
)

// UnknownLabel is the fallback for pool/release fields that are missing.
const UnknownLabel = "unknown"

// Record is one parsed access log line. It is constructed per line and not
// retained.
type Record struct {
	Pool           string
	Release        string
	Status         int
	UpstreamStatus string
	UpstreamAddr   string
	RequestTime    string
}

// Parse extracts a Record from a raw log line. It never fails: missing or
// malformed fields degrade to defaults (pool/release "unknown", status 0,
// upstream fields empty) so transitional or truncated lines are still
// counted.
func Parse(line string) Record {
	rec := Record{
		Pool:    UnknownLabel,
		Release: UnknownLabel,
	}

	if m := rePool.FindStringSubmatch(line); m != nil {
		rec.Pool = m[1]
	}
	if m := reRelease.FindStringSubmatch(line); m != nil {
		rec.Release = m[1]
	}
	if m := reStatus.FindStringSubmatch(line); m != nil {
		if status, err := strconv.Atoi(m[1]); err == nil {
			rec.Status = status
		}
	}
	if m := reUpstreamStatus.FindStringSubmatch(line); m != nil {
		rec.UpstreamStatus = m[1]
	}
	if m := reUpstreamAddr.FindStringSubmatch(line); m != nil {
		rec.UpstreamAddr = m[1]
	}
	if m := reRequestTime.FindStringSubmatch(line); m != nil {
		rec.RequestTime = m[1]
	}

	return rec
}
