package queue

import (
	"context"
	"errors"

	"github.com/akolanti/DocChatAPI/internal/domain/docModel"
)

// ErrNoJob means the consume wait timed out with nothing to deliver. The
// worker loop treats it as "check the stop signal and try again".
var ErrNoJob = errors.New("no job available")

// Delivery is one at-least-once message. Exactly one of Ack or Nack must be
// called; until then the message sits on the in-flight list and a crashed
// worker's deliveries are reaped back onto the ready list.
type Delivery interface {
	Job() docModel.Job
	//Ack removes the message permanently
	Ack(ctx context.Context) error
	//Nack with requeue republishes the job with its attempt counter bumped;
	//without requeue the job moves to the dead-letter list
	Nack(ctx context.Context, requeue bool) error
}

type JobQueue interface {
	Publish(ctx context.Context, job docModel.Job) error
	Consume(ctx context.Context) (Delivery, error)
}
