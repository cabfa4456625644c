package device_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/cipherbench/internal/device"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		kind    device.Kind
		env     string
		wantErr error
	}{
		{kind: device.Emulated},
		{kind: device.Auto},
		{kind: "EMULATED"},
		{kind: device.Auto, env: "1", wantErr: device.ErrUnavailable},
		{kind: device.Emulated, env: "true"},
		{kind: device.None, wantErr: device.ErrUnavailable},
		{kind: "opencl", wantErr: device.ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.env, func(t *testing.T) {
			t.Setenv(device.EnvDisable, tt.env)

			dev, err := device.Open(tt.kind, device.WithComputeUnits(3))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, dev)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 3, dev.ComputeUnits())
			assert.Contains(t, dev.Name(), "emulated")
		})
	}
}

func TestEnqueueRunsEveryWorkItem(t *testing.T) {
	t.Parallel()

	dev := device.NewEmulated(device.WithComputeUnits(4), device.WithWorkGroupSize(7))

	ctx, err := dev.NewContext()
	require.NoError(t, err)
	t.Cleanup(ctx.Release)

	const global = 1000

	buf, err := ctx.Alloc(global)
	require.NoError(t, err)

	var calls atomic.Int64

	kernel, err := ctx.CreateKernel("mark", 2, func(gid int, args []any) {
		calls.Add(1)
		args[0].(*device.Buffer).Bytes()[gid] += byte(args[1].(int))
	})
	require.NoError(t, err)

	require.NoError(t, kernel.SetArg(0, buf))
	require.NoError(t, kernel.SetArg(1, 1))
	require.NoError(t, ctx.Enqueue(kernel, global))

	out := make([]byte, global)
	require.NoError(t, buf.Read(out))

	assert.Equal(t, int64(global), calls.Load())

	for gid, b := range out {
		require.Equal(t, byte(1), b, "work-item %d", gid)
	}
}

func TestEnqueueRequiresAllArgs(t *testing.T) {
	t.Parallel()

	ctx, err := device.NewEmulated().NewContext()
	require.NoError(t, err)
	t.Cleanup(ctx.Release)

	kernel, err := ctx.CreateKernel("k", 2, func(int, []any) {})
	require.NoError(t, err)
	require.NoError(t, kernel.SetArg(0, 1))

	require.ErrorIs(t, ctx.Enqueue(kernel, 1), device.ErrMissingArg)
	require.Error(t, kernel.SetArg(2, 1))
	require.Error(t, kernel.SetArg(-1, 1))
}

func TestOutOfMemory(t *testing.T) {
	t.Parallel()

	dev := device.NewEmulated(device.WithMemory(100))

	ctx, err := dev.NewContext()
	require.NoError(t, err)
	t.Cleanup(ctx.Release)

	first, err := ctx.Alloc(60)
	require.NoError(t, err)

	_, err = ctx.Alloc(60)
	require.ErrorIs(t, err, device.ErrOutOfMemory)

	first.Release()

	_, err = ctx.Alloc(60)
	require.NoError(t, err)

	require.ErrorIs(t, first.Write(make([]byte, 1)), device.ErrReleased)
}

func TestBufferBounds(t *testing.T) {
	t.Parallel()

	ctx, err := device.NewEmulated().NewContext()
	require.NoError(t, err)
	t.Cleanup(ctx.Release)

	buf, err := ctx.Alloc(4)
	require.NoError(t, err)

	require.NoError(t, buf.Write([]byte{1, 2}))
	require.Error(t, buf.Write(make([]byte, 5)))
	require.Error(t, buf.Read(make([]byte, 5)))

	out := make([]byte, 2)
	require.NoError(t, buf.Read(out))
	assert.Equal(t, []byte{1, 2}, out)
	assert.Equal(t, 4, buf.Len())
}

func TestReleaseAccounting(t *testing.T) {
	t.Parallel()

	dev := device.NewEmulated()

	ctx, err := dev.NewContext()
	require.NoError(t, err)

	buf, err := ctx.Alloc(128)
	require.NoError(t, err)

	_, err = ctx.Alloc(64)
	require.NoError(t, err)

	kernel, err := ctx.CreateKernel("k", 0, func(int, []any) {})
	require.NoError(t, err)

	assert.Equal(t, device.Stats{Contexts: 1, Buffers: 2, Kernels: 1, Bytes: 192}, dev.Stats())

	buf.Release()
	buf.Release()
	kernel.Release()
	kernel.Release()

	assert.Equal(t, device.Stats{Contexts: 1, Buffers: 1, Bytes: 64}, dev.Stats())

	ctx.Release()
	ctx.Release()

	assert.Equal(t, device.Stats{}, dev.Stats())

	_, err = ctx.Alloc(1)
	require.ErrorIs(t, err, device.ErrReleased)

	_, err = ctx.CreateKernel("k", 0, nil)
	require.ErrorIs(t, err, device.ErrReleased)

	require.ErrorIs(t, ctx.Enqueue(kernel, 1), device.ErrReleased)
}
