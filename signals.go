package stash

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for dump/load events.
var (
	SignalDumpStart    = capitan.NewSignal("stash.dump.start", "Dump operation beginning")
	SignalDumpComplete = capitan.NewSignal("stash.dump.complete", "Dump operation finished")
	SignalLoadStart    = capitan.NewSignal("stash.load.start", "Load operation beginning")
	SignalLoadComplete = capitan.NewSignal("stash.load.complete", "Load operation finished")
	SignalPromote      = capitan.NewSignal("stash.chunk.promote", "A chunk exceeded the inline threshold and was promoted to its own blob")
	SignalCollision    = capitan.NewSignal("stash.mapping.collision", "PutBlob detected a hash collision")
)

// Keys for typed event data.
var (
	KeyRootKey       = capitan.NewStringKey("root_key")
	KeyByteSize      = capitan.NewIntKey("size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyPromotedCount = capitan.NewIntKey("promoted_count")
	KeySharedCount   = capitan.NewIntKey("shared_count")
	KeyError         = capitan.NewErrorKey("error")
)

func emitDumpStart(ctx context.Context) {
	capitan.Emit(ctx, SignalDumpStart)
}

func emitDumpComplete(ctx context.Context, root Key, size, promoted, shared int, d time.Duration, err error) {
	fields := []capitan.Field{
		KeyRootKey.Field(root.String()),
		KeyByteSize.Field(size),
		KeyPromotedCount.Field(promoted),
		KeySharedCount.Field(shared),
		KeyDuration.Field(d),
	}
	if err != nil {
		capitan.Error(ctx, SignalDumpComplete, append(fields, KeyError.Field(err))...)
		return
	}
	capitan.Emit(ctx, SignalDumpComplete, fields...)
}

func emitLoadStart(ctx context.Context, root Key) {
	capitan.Emit(ctx, SignalLoadStart, KeyRootKey.Field(root.String()))
}

func emitLoadComplete(ctx context.Context, root Key, d time.Duration, err error) {
	fields := []capitan.Field{
		KeyRootKey.Field(root.String()),
		KeyDuration.Field(d),
	}
	if err != nil {
		capitan.Error(ctx, SignalLoadComplete, append(fields, KeyError.Field(err))...)
		return
	}
	capitan.Emit(ctx, SignalLoadComplete, fields...)
}

func emitPromote(ctx context.Context, k Key, size int) {
	capitan.Emit(ctx, SignalPromote, KeyRootKey.Field(k.String()), KeyByteSize.Field(size))
}

func emitCollision(ctx context.Context, k Key) {
	capitan.Emit(ctx, SignalCollision, KeyRootKey.Field(k.String()))
}
