// Package build drives the bounded-memory indexing pipeline: manifest scan
// → tokenize → stem → dedup-set gate → term table → memory-triggered flush
// → external merge. Ported from original_source/indexer.cpp's main() and
// process_one_doc, restructured into a single-threaded Go pipeline. Optional
// auxiliary hooks (metrics, Kafka notify, Postgres mirror) are invoked
// synchronously at the edges of the per-document loop and the final merge;
// none of them introduces concurrency into the core loop.
package build

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/corvidx/invidx/internal/idx/block"
	"github.com/corvidx/invidx/internal/idx/docdir"
	"github.com/corvidx/invidx/internal/idx/docset"
	"github.com/corvidx/invidx/internal/idx/manifest"
	"github.com/corvidx/invidx/internal/idx/merge"
	"github.com/corvidx/invidx/internal/idx/stemmer"
	"github.com/corvidx/invidx/internal/idx/termtable"
	"github.com/corvidx/invidx/internal/idx/tokenizer"
	"github.com/corvidx/invidx/pkg/docstore"
	apperrors "github.com/corvidx/invidx/pkg/errors"
	"github.com/corvidx/invidx/pkg/metrics"
	"github.com/corvidx/invidx/pkg/notify"
)

// termTableCap and termTableArena match the reference's default capacities
// (2^21 slots, 128MB arena); docSetCap/docSetArena match its 2^17 slots,
// 2MB arena.
const (
	termTableCap   = 1 << 21
	termTableArena = 128 << 20
	docSetCap      = 1 << 17
	docSetArena    = 2 << 20

	readChunkSize = 1 << 20
)

// Options configures one indexing run.
type Options struct {
	ManifestPath string
	CorpusDir    string
	OutDir       string
	MemBudget    int64 // bytes
	ReportBytes  int64 // progress log cadence, in bytes processed

	Logger   *slog.Logger
	Metrics  *metrics.Metrics  // nil disables build metrics
	Notifier *notify.Notifier // nil disables the Kafka build-complete event
	Mirror   *docstore.Mirror // nil disables the Postgres manifest mirror
}

// Result summarizes a completed build.
type Result struct {
	DocCount    int
	TermCount   int
	PostingsLen int64
	BlocksCount int
}

// Run executes one full indexing pass and returns summary statistics.
func Run(ctx context.Context, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	blocksDir := filepath.Join(opts.OutDir, "blocks")
	if err := os.MkdirAll(blocksDir, 0o755); err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrIO, apperrors.ExitIO, "creating output directories: %v", err)
	}

	mf, err := os.Open(opts.ManifestPath)
	if err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrIO, apperrors.ExitIO, "opening manifest: %v", err)
	}
	defer mf.Close()

	docs := docdir.New()
	tt := termtable.New(termTableCap, termTableArena)
	dset := docset.New(docSetCap, docSetArena)

	blockIdx := 0
	var totalBytes, reportedBytes int64

	flush := func() error {
		if tt.Len() == 0 {
			return nil
		}
		path := filepath.Join(blocksDir, fmt.Sprintf("block_%04d.blk", blockIdx))
		if err := block.Write(path, tt.Entries()); err != nil {
			return apperrors.Newf(apperrors.ErrIO, apperrors.ExitIO, "flushing block: %v", err)
		}
		blockIdx++
		if opts.Metrics != nil {
			opts.Metrics.FlushesTotal.Inc()
		}
		log.Info("flush", "block", path, "terms", tt.Len())
		tt.Clear()
		return nil
	}

	var scanErr error
	manifest.Scan(mf, func(entry manifest.Entry) {
		if scanErr != nil {
			return
		}
		docID := docs.AddDoc(entry.Title, entry.URL)
		if opts.Mirror != nil {
			opts.Mirror.AddRow(docID, entry.DocID, entry.Title, entry.URL)
		}
		if opts.Metrics != nil {
			opts.Metrics.DocsIndexedTotal.Inc()
		}

		corpusPath := filepath.Join(opts.CorpusDir, entry.DocID+".txt")
		n, err := indexDocument(corpusPath, docID, tt, dset)
		if err != nil {
			log.Warn("corpus file missing, indexing empty document", "doc_id", entry.DocID, "error", err)
			if opts.Metrics != nil {
				opts.Metrics.CorpusFilesMissing.Inc()
			}
		} else {
			totalBytes += n
			if opts.ReportBytes > 0 && totalBytes-reportedBytes >= opts.ReportBytes {
				log.Info("progress", "bytes", totalBytes, "docs", docs.Len())
				reportedBytes = totalBytes
			}
		}

		if opts.Metrics != nil {
			opts.Metrics.TermTableMemBytes.Set(float64(tt.ApproxMemBytes()))
		}
		if opts.MemBudget > 0 && tt.ApproxMemBytes() >= opts.MemBudget {
			if err := flush(); err != nil {
				scanErr = err
			}
		}
	})
	if scanErr != nil {
		return Result{}, scanErr
	}

	if err := flush(); err != nil {
		return Result{}, err
	}

	docsPath := filepath.Join(opts.OutDir, "docs.bin")
	if err := docs.WriteTo(docsPath); err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrIO, apperrors.ExitIO, "writing docs.bin: %v", err)
	}
	if opts.Mirror != nil {
		if err := opts.Mirror.Commit(ctx); err != nil {
			log.Warn("postgres manifest mirror commit failed", "error", err)
		}
	}

	mergeStart := time.Now()
	lexPath := filepath.Join(opts.OutDir, "lexicon.bin")
	postPath := filepath.Join(opts.OutDir, "postings.bin")
	stats, err := merge.Run(blocksDir, lexPath, postPath)
	if err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrIO, apperrors.ExitIO, "merging blocks: %v", err)
	}
	if opts.Metrics != nil {
		opts.Metrics.MergeDuration.Observe(time.Since(mergeStart).Seconds())
	}

	result := Result{
		DocCount:    docs.Len(),
		TermCount:   stats.TermCount,
		PostingsLen: stats.PostingsLen,
		BlocksCount: stats.BlocksMerged,
	}

	log.Info("done", "docs", result.DocCount, "terms", result.TermCount, "duration", time.Since(start))

	if opts.Notifier != nil {
		if err := opts.Notifier.PublishComplete(ctx, notify.BuildComplete{
			DocCount:   result.DocCount,
			TermCount:  result.TermCount,
			OutDir:     opts.OutDir,
			DurationMS: time.Since(start).Milliseconds(),
		}); err != nil {
			log.Warn("build-complete notification failed", "error", err)
		}
	}

	return result, nil
}

// indexDocument tokenizes, stems, and dedup-gates one corpus file's content
// into tt's posting lists, returning the number of bytes read from the file.
// Only a term's first occurrence in this document (per dset) reaches the
// term table, matching the reference's process_one_doc.
func indexDocument(path string, docID uint32, tt *termtable.Table, dset *docset.Set) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dset.Reset()
	sc := tokenizer.NewScanner()
	var total int64
	buf := make([]byte, readChunkSize)
	r := bufio.NewReaderSize(f, readChunkSize)

	emit := func(tok []byte) {
		stemmed := stemmer.Stem(tok)
		if len(stemmed) == 0 {
			return
		}
		if dset.ContainsOrAdd(stemmed) {
			return
		}
		entry := tt.GetOrCreate(stemmed)
		entry.Postings = termtable.PushUniqueSorted(entry.Postings, docID)
	}

	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			sc.Feed(buf[:n], emit)
		}
		if rerr != nil {
			break
		}
	}
	sc.Flush(emit)
	return total, nil
}
