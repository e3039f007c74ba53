// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient implements transport.Client over gRPC against the
// spark.connect.SparkConnectService. Messages are the hand-written ones from
// internal/bridge/proto, sent through a forced codec on literal method names.
//
// A Client holds one *grpc.ClientConn for its lifetime. Every call carries the bearer
// token and extra headers from the connection string as outgoing metadata.
package grpcclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	sparkpb "sparkql/client/internal/bridge/proto"
	"sparkql/client/internal/arrowio"
	"sparkql/client/transport"
)

// DefaultPort is the Spark Connect server port.
const DefaultPort = "15002"

// Options configures a Client.
type Options struct {
	// Target is host, host:port or a gRPC target URI such as passthrough:///name.
	// DefaultPort is used when a plain host has no port.
	Target string
	UseTLS bool
	// Token is sent as "authorization: Bearer <token>" when set.
	Token string
	// Headers are sent as extra metadata on every call.
	Headers map[string]string
	// UserAgent is reported through the gRPC user agent.
	UserAgent string

	// DialOptions are appended after the credential options, e.g. a bufconn dialer.
	DialOptions []grpc.DialOption
	Allocator   memory.Allocator
	Logger      *slog.Logger
}

// Client implements transport.Client.
type Client struct {
	conn   *grpc.ClientConn
	md     metadata.MD
	mem    memory.Allocator
	logger *slog.Logger
}

var _ transport.Client = (*Client)(nil)

// New creates a client for opts.Target. No connection is made until the first call.
func New(opts Options) (*Client, error) {
	if opts.Target == "" {
		return nil, errors.New("grpcclient: empty target")
	}
	host, target := opts.Target, opts.Target
	if h, _, err := net.SplitHostPort(opts.Target); err == nil {
		host = h
	} else if !strings.Contains(opts.Target, ":///") {
		target = net.JoinHostPort(opts.Target, DefaultPort)
	}

	var creds credentials.TransportCredentials
	if opts.UseTLS {
		creds = credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	} else {
		creds = insecure.NewCredentials()
	}
	dial := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(sparkpb.Codec{}), grpc.MaxCallRecvMsgSize(128<<20)),
	}
	if opts.UserAgent != "" {
		dial = append(dial, grpc.WithUserAgent(opts.UserAgent))
	}
	dial = append(dial, opts.DialOptions...)

	conn, err := grpc.NewClient(target, dial...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: %w", err)
	}

	md := metadata.MD{}
	if opts.Token != "" {
		md.Set("authorization", "Bearer "+opts.Token)
	}
	for k, v := range opts.Headers {
		md.Set(k, v)
	}

	c := &Client{conn: conn, md: md, mem: opts.Allocator, logger: opts.Logger}
	if c.mem == nil {
		c.mem = memory.DefaultAllocator
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if len(c.md) == 0 {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, c.md.Copy())
}

func userContext(sc transport.SessionContext) sparkpb.UserContext {
	return sparkpb.UserContext{UserID: sc.UserID, UserName: sc.UserName}
}

// SubmitPlan opens an ExecutePlan server stream for plan.
func (c *Client) SubmitPlan(ctx context.Context, plan []byte, sc transport.SessionContext) (transport.Stream, error) {
	req := &sparkpb.ExecutePlanRequest{
		SessionID:                         sc.SessionID,
		UserContext:                       userContext(sc),
		Plan:                              plan,
		ClientType:                        sc.ClientType,
		OperationID:                       sc.OperationID,
		Tags:                              sc.Tags,
		ClientObservedServerSideSessionID: sc.ServerSideSessionID,
	}

	sctx, cancel := context.WithCancel(c.outgoing(ctx))
	cs, err := c.conn.NewStream(sctx, &grpc.StreamDesc{ServerStreams: true}, sparkpb.MethodExecutePlan)
	if err != nil {
		cancel()
		return nil, classify(err)
	}
	if err := cs.SendMsg(req); err != nil {
		cancel()
		return nil, classify(err)
	}
	if err := cs.CloseSend(); err != nil {
		cancel()
		return nil, classify(err)
	}
	c.logger.Debug("plan submitted", "session", sc.SessionID, "operation", sc.OperationID, "bytes", len(plan))
	return &stream{cs: cs, cancel: cancel, mem: c.mem}, nil
}

// AnalyzeSchema runs an AnalyzePlan schema request.
func (c *Client) AnalyzeSchema(ctx context.Context, plan []byte, sc transport.SessionContext) (transport.AnalyzeResult, error) {
	req := &sparkpb.AnalyzePlanRequest{
		SessionID:                         sc.SessionID,
		UserContext:                       userContext(sc),
		ClientType:                        sc.ClientType,
		SchemaPlan:                        plan,
		ClientObservedServerSideSessionID: sc.ServerSideSessionID,
	}
	if req.SchemaPlan == nil {
		req.SchemaPlan = []byte{}
	}
	var resp sparkpb.AnalyzePlanResponse
	if err := c.conn.Invoke(c.outgoing(ctx), sparkpb.MethodAnalyzePlan, req, &resp); err != nil {
		return transport.AnalyzeResult{}, classify(err)
	}
	if resp.Schema == nil {
		return transport.AnalyzeResult{}, errors.New("grpcclient: analyze response carries no schema")
	}
	schema, err := arrowio.SchemaFromDataType(resp.Schema)
	if err != nil {
		return transport.AnalyzeResult{}, fmt.Errorf("grpcclient: %w", err)
	}
	return transport.AnalyzeResult{Schema: schema, ServerSideSessionID: resp.ServerSideSessionID}, nil
}

// SparkVersion runs an AnalyzePlan spark_version request.
func (c *Client) SparkVersion(ctx context.Context, sc transport.SessionContext) (string, error) {
	req := &sparkpb.AnalyzePlanRequest{
		SessionID:                         sc.SessionID,
		UserContext:                       userContext(sc),
		ClientType:                        sc.ClientType,
		SparkVersion:                      true,
		ClientObservedServerSideSessionID: sc.ServerSideSessionID,
	}
	var resp sparkpb.AnalyzePlanResponse
	if err := c.conn.Invoke(c.outgoing(ctx), sparkpb.MethodAnalyzePlan, req, &resp); err != nil {
		return "", classify(err)
	}
	return resp.SparkVersion, nil
}

// Interrupt interrupts sc.OperationID, or all operations of the session when it is empty.
func (c *Client) Interrupt(ctx context.Context, sc transport.SessionContext) ([]string, error) {
	req := &sparkpb.InterruptRequest{
		SessionID:                         sc.SessionID,
		UserContext:                       userContext(sc),
		ClientType:                        sc.ClientType,
		Type:                              sparkpb.InterruptAll,
		ClientObservedServerSideSessionID: sc.ServerSideSessionID,
	}
	if sc.OperationID != "" {
		req.Type = sparkpb.InterruptOperationID
		req.OperationID = sc.OperationID
	}
	var resp sparkpb.InterruptResponse
	if err := c.conn.Invoke(c.outgoing(ctx), sparkpb.MethodInterrupt, req, &resp); err != nil {
		return nil, classify(err)
	}
	return resp.InterruptedIDs, nil
}

// SetConfig sets session configuration.
func (c *Client) SetConfig(ctx context.Context, sc transport.SessionContext, pairs map[string]string) (transport.ConfigResult, error) {
	req := c.configRequest(sc)
	for k, v := range pairs {
		req.Set = append(req.Set, sparkpb.KeyValue{Key: k, Value: &v})
	}
	return c.config(ctx, req, nil)
}

// GetConfig reads session configuration.
func (c *Client) GetConfig(ctx context.Context, sc transport.SessionContext, keys []string) (transport.ConfigResult, error) {
	req := c.configRequest(sc)
	req.Get = keys
	return c.config(ctx, req, keys)
}

func (c *Client) configRequest(sc transport.SessionContext) *sparkpb.ConfigRequest {
	return &sparkpb.ConfigRequest{
		SessionID:                         sc.SessionID,
		UserContext:                       userContext(sc),
		ClientType:                        sc.ClientType,
		ClientObservedServerSideSessionID: sc.ServerSideSessionID,
	}
}

func (c *Client) config(ctx context.Context, req *sparkpb.ConfigRequest, keys []string) (transport.ConfigResult, error) {
	var resp sparkpb.ConfigResponse
	if err := c.conn.Invoke(c.outgoing(ctx), sparkpb.MethodConfig, req, &resp); err != nil {
		return transport.ConfigResult{}, classify(err)
	}
	res := transport.ConfigResult{Warnings: resp.Warnings, ServerSideSessionID: resp.ServerSideSessionID}
	if keys != nil {
		byKey := make(map[string]*string, len(resp.Pairs))
		for _, kv := range resp.Pairs {
			byKey[kv.Key] = kv.Value
		}
		res.Values = make([]*string, len(keys))
		for i, k := range keys {
			res.Values[i] = byKey[k]
		}
	}
	return res, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
