// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer pipeline is built from three services:
//
//   - RetrievalService: embeds the query and ranks chunks (similarity or MMR)
//   - ReferenceResolver: joins chunk references against the side table
//   - AnswerService: runs both, calls the Generator and packages the result
//
// Services are pure Go with no CGO.
package services
