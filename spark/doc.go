// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

/*
Package spark is a client for Spark Connect servers.

A Session owns one gRPC channel to a server. Queries are SQL templates with positional
'?' placeholders bound to typed literals; a Session translates a Query into a Plan and
executes it with Collect, which returns the whole result as Arrow record batches.

	sess, err := spark.Connect(ctx, "sc://localhost:15002")
	if err != nil {
		return err
	}
	defer sess.Close()

	rs, err := sess.Query("SELECT ? AS id, ? AS text").
		Bind(spark.Lit(int32(42))).
		Bind(spark.Lit("world")).
		Execute(ctx)
	if err != nil {
		return err
	}
	defer rs.Release()

Plans are translated locally. With validate_plans=true in the connection string (or
WithPlanValidation) the server also analyzes each plan's schema, so Plan can fail with
a server-reported PlanError before anything runs.

Collect calls on one Session are serialized. Canceling the context of a Collect closes
its stream, asks the server to interrupt the operation and leaves the Session usable.
Nothing is retried: callers decide whether a transport failure is worth another Collect.

Every error is a *Error; match on its Kind with IsKind or errors.Is, and on its origin
with IsTransport and IsServer.
*/
package spark
