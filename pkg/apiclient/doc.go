// Package apiclient is a typed client for the vision platform HTTP API.
//
// Every operation is described by an immutable Endpoint (method, path
// template, payload kind) and dispatched through Client.Perform, which issues
// exactly one request through an injected httpclient.Client and returns the
// JSON body verbatim or an *Error.
//
// # Quick Start
//
//	c := apiclient.New(apiclient.WithBaseURL("http://localhost:8000"))
//	resp, err := c.GetTrainingStatus(ctx, "abc-123")
//	var status apiclient.TrainingStatus
//	err = resp.Decode(&status)
//
// # Optional fields
//
// Optional scalars are pointers. A nil pointer is never transmitted, a pointer
// to a zero value is:
//
//	c.InferImage(ctx, blob, apiclient.InferenceOptions{
//	    Confidence: apiclient.Float64(0),
//	})
//
// # Status handling
//
// By default a non-2xx response is returned as an *Error of kind KindStatus.
// WithCompatibilityMode restores the legacy behavior of decoding every body
// regardless of status, in which case backend error bodies come back as
// ordinary values and callers must inspect Response.StatusCode themselves.
package apiclient
