// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultRemote is used when neither a connection string nor SPARK_REMOTE is given.
	DefaultRemote = "sc://localhost:15002"
	// RemoteEnv names the environment variable holding the default connection string.
	RemoteEnv = "SPARK_REMOTE"
)

// Keys of the connection string that configure the client instead of becoming headers.
const (
	KeyToken         = "token"
	KeyUserID        = "user_id"
	KeyUserAgent     = "user_agent"
	KeySessionID     = "session_id"
	KeyUseSSL        = "use_ssl"
	KeyValidatePlans = "validate_plans"
)

// SparkConn is a parsed Spark Connect connection string.
type SparkConn struct {
	Host string
	Port string

	Token     string
	UserID    string
	UserAgent string
	// SessionID is a canonical UUID, or empty when a fresh session should be created.
	SessionID     string
	UseSSL        bool
	ValidatePlans bool

	// Headers holds every other parameter; they travel as gRPC metadata.
	Headers map[string]string

	Original string
}

// Address returns host:port.
func (c *SparkConn) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Remote returns the connection string to use when none is given explicitly.
func Remote() string {
	if v := strings.TrimSpace(os.Getenv(RemoteEnv)); v != "" {
		return v
	}
	return DefaultRemote
}

// SparkResolver handles sc:// connection strings of the form
//
//	sc://host:port/;key=value;key=value
//
// The query form sc://host:port/?key=value&key=value is accepted too, and the slash
// before ';' may be left out: sc://host:port;key=value.
type SparkResolver struct{}

// NewSparkResolver creates a new Spark Connect resolver
func NewSparkResolver() *SparkResolver {
	return &SparkResolver{}
}

// ParseSpark parses a Spark Connect connection string.
func ParseSpark(conn string) (*SparkConn, error) {
	return NewSparkResolver().ParseConn(conn)
}

// ParseConn parses conn into a SparkConn.
func (r *SparkResolver) ParseConn(conn string) (*SparkConn, error) {
	if strings.TrimSpace(conn) == "" {
		return nil, NewParseError(conn, "empty connection string", "use sc://host:port")
	}
	u, err := url.Parse(withPathSeparator(conn))
	if err != nil {
		return nil, NewParseError(conn, "failed to parse connection string", "use sc://host:port/;key=value")
	}
	if u.Scheme != "sc" {
		return nil, NewParseError(conn, "the connection string must start with 'sc://'", "use sc://host:port")
	}
	if u.Hostname() == "" {
		return nil, NewParseError(conn, "the hostname must not be empty", "use sc://host:port")
	}
	if u.Port() == "" {
		return nil, NewParseError(conn, "the port must not be empty", "Spark Connect listens on 15002 by default")
	}
	if _, err := strconv.ParseUint(u.Port(), 10, 16); err != nil {
		return nil, NewParseError(conn, "invalid port number: "+u.Port(), "port must be numeric")
	}

	params := map[string]string{}
	for _, pair := range strings.Split(u.Path, ";") {
		if pair == "" || pair == "/" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		params[k] = v
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	c := &SparkConn{
		Host:     u.Hostname(),
		Port:     u.Port(),
		UserID:   os.Getenv("USER"),
		Original: conn,
	}
	if v, ok := params[KeyToken]; ok {
		c.Token = v
		delete(params, KeyToken)
	}
	if v, ok := params[KeyUserID]; ok {
		c.UserID = v
		delete(params, KeyUserID)
	}
	if v, ok := params[KeyUserAgent]; ok {
		c.UserAgent = v
		delete(params, KeyUserAgent)
	}
	if v, ok := params[KeySessionID]; ok {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, NewParseError(conn, "invalid session_id "+strconv.Quote(v), "session_id must be a UUID")
		}
		c.SessionID = id.String()
		delete(params, KeySessionID)
	}
	if v, ok := params[KeyUseSSL]; ok {
		c.UseSSL = strings.EqualFold(v, "true")
		delete(params, KeyUseSSL)
	}
	if v, ok := params[KeyValidatePlans]; ok {
		c.ValidatePlans = strings.EqualFold(v, "true")
		delete(params, KeyValidatePlans)
	}
	if len(params) > 0 {
		c.Headers = params
	}
	return c, nil
}

// withPathSeparator rewrites sc://host:port;k=v to sc://host:port/;k=v so the
// parameters are not read as part of the port.
func withPathSeparator(conn string) string {
	scheme, rest, ok := strings.Cut(conn, "://")
	if !ok {
		return conn
	}
	semi := strings.IndexByte(rest, ';')
	if semi < 0 || strings.ContainsAny(rest[:semi], "/?") {
		return conn
	}
	return scheme + "://" + rest[:semi] + "/" + rest[semi:]
}

// Parse implements Resolver.
func (r *SparkResolver) Parse(conn string) (*DSNInfo, error) {
	c, err := r.ParseConn(conn)
	if err != nil {
		return nil, err
	}
	info := &DSNInfo{
		Type:     DBTypeSpark,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.UserID,
		Password: c.Token,
		Params:   map[string]string{},
		Original: conn,
	}
	for k, v := range c.Headers {
		info.Params[k] = v
	}
	if c.UserAgent != "" {
		info.Params[KeyUserAgent] = c.UserAgent
	}
	if c.SessionID != "" {
		info.Params[KeySessionID] = c.SessionID
	}
	if c.UseSSL {
		info.Params[KeyUseSSL] = "true"
	}
	if c.ValidatePlans {
		info.Params[KeyValidatePlans] = "true"
	}
	return info, nil
}

// Normalize renders info as sc://host:port/;key=value with keys in sorted order.
func (r *SparkResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil connection info", "")
	}
	params := make(map[string]string, len(info.Params)+2)
	for k, v := range info.Params {
		params[k] = v
	}
	if info.Password != "" {
		params[KeyToken] = info.Password
	}
	if info.User != "" {
		params[KeyUserID] = info.User
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("sc://")
	b.WriteString(net.JoinHostPort(info.Host, info.Port))
	if len(keys) > 0 {
		b.WriteString("/")
	}
	for _, k := range keys {
		b.WriteString(";")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String(), nil
}

// Validate checks that conn parses.
func (r *SparkResolver) Validate(conn string) error {
	_, err := r.ParseConn(conn)
	return err
}
