// Package pipeline hashes a file with several algorithms in a single read by
// fanning fixed-size chunks out to one worker goroutine per algorithm.
package pipeline

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"parhash/internal/alg"
)

// Digest reads r once in fixed-size chunks and returns one lowercase hex
// digest per algorithm, in request order, plus the number of bytes read.
//
// Every chunk is sent to each worker's buffered channel in algorithm order,
// so the reader blocks once the slowest algorithm falls a full channel
// behind. A mid-stream read error closes the channels with the error flag
// already set, and no digests are reported for the truncated stream.
func Digest(r io.Reader, specs []alg.Spec, opts Options, onBytes func(n int64)) ([]string, int64, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	channelSize := opts.ChannelSize
	if channelSize <= 0 {
		channelSize = DefaultChannelSize
	}

	chans := make([]chan []byte, len(specs))
	for i := range chans {
		chans[i] = make(chan []byte, channelSize)
	}

	digests := make([]string, len(specs))
	var readErr error // written before the channels close, read by workers after drain

	var wg sync.WaitGroup
	wg.Add(len(specs))
	for i, sp := range specs {
		go func(slot int, sp alg.Spec, in <-chan []byte) {
			defer wg.Done()

			h := sp.New()
			for chunk := range in {
				_, _ = h.Write(chunk) // hash.Hash writes never fail
			}
			if readErr != nil {
				return // abnormal close
			}
			digests[slot] = hex.EncodeToString(h.Sum(nil))
		}(i, sp, chans[i])
	}

	var total int64
	for {
		buf := make([]byte, chunkSize) // workers may still hold earlier chunks, never reuse
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			chunk := buf[:n]
			for _, ch := range chans {
				ch <- chunk
			}
			total += int64(n)
			if onBytes != nil {
				onBytes(int64(n))
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			readErr = rerr
			break
		}
	}
	for _, ch := range chans {
		close(ch)
	}
	wg.Wait()

	if readErr != nil {
		return nil, total, readErr
	}
	return digests, total, nil
}

// Process hashes one file with every requested algorithm in a single pass.
// Failures are file-scoped and returned in the result, never panicked.
func Process(path string, specs []alg.Spec, opts Options, onBytes func(n int64)) FileResult {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	digests, n, err := Digest(bufio.NewReader(f), specs, opts, onBytes)
	if err != nil {
		return FileResult{Path: path, Size: n, Err: &ReadError{Path: path, Err: err}}
	}
	return FileResult{Path: path, Size: n, Digests: digests}
}
