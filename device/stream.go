package device

// Stream is an ordered sequence of device operations that execute
// asynchronously relative to the issuing goroutine. Operations within a
// stream run in submission order; the host must call Synchronize before
// observing any result they produce.
type Stream struct {
	tasks  chan func()
	closed chan struct{}
}

const streamQueueDepth = 1024

func newStream() *Stream {
	s := &Stream{
		tasks:  make(chan func(), streamQueueDepth),
		closed: make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Stream) worker() {
	for task := range s.tasks {
		task()
	}
	close(s.closed)
}

// Enqueue submits a task for asynchronous execution on the stream.
func (s *Stream) Enqueue(task func()) {
	s.tasks <- task
}

// Synchronize blocks until every previously enqueued task has completed.
// This is the mandatory barrier before any timing boundary or any host
// read of device-produced data.
func (s *Stream) Synchronize() {
	done := make(chan struct{})
	s.tasks <- func() { close(done) }
	<-done
}

// Close drains the stream and stops its worker. The stream must not be
// used afterwards.
func (s *Stream) Close() {
	close(s.tasks)
	<-s.closed
}
