package guest

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/sysx"
)

// HostModuleName is the import module guests use to reach the shim's
// own host functions.
const HostModuleName = "hostshim"

// States returned by permission_state.
const (
	stateGranted uint32 = 0
	statePrompt  uint32 = 1
	stateDenied  uint32 = 2
)

// Status results for the string query functions. Non-negative values
// are the byte length written into the guest buffer.
const (
	statusDenied   = -1
	statusTooSmall = -2
)

// instantiateHostModule exports the shim functions under HostModuleName:
//
//	permission_state(name_ptr, name_len, val_ptr, val_len: i32) -> i32
//	hostname(buf_ptr, buf_len: i32) -> i32
//	os_release(buf_ptr, buf_len: i32) -> i32
//
// permission_state returns 0 granted, 1 prompt, 2 denied. The string
// queries write into the guest buffer and return the length written,
// -1 when the policy denies the query or the host cannot answer, and
// -2 when the buffer is too small.
func instantiateHostModule(ctx context.Context, rt wazero.Runtime, perms *permissions.Manager, sys *sysx.Sys) error {
	i32 := api.ValueTypeI32

	builder := rt.NewHostModuleBuilder(HostModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = uint64(permissionState(mod, perms, stack))
		}), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		Export("permission_state")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = api.EncodeI32(writeString(mod, stack, sys.Hostname))
		}), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("hostname")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = api.EncodeI32(writeString(mod, stack, sys.OsRelease))
		}), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("os_release")

	_, err := builder.Instantiate(ctx)
	return err
}

func permissionState(mod api.Module, perms *permissions.Manager, stack []uint64) uint32 {
	namePtr, nameLen := uint32(stack[0]), uint32(stack[1])
	valPtr, valLen := uint32(stack[2]), uint32(stack[3])

	name, ok := readString(mod, namePtr, nameLen)
	if !ok {
		return stateDenied
	}
	value, ok := readString(mod, valPtr, valLen)
	if !ok {
		return stateDenied
	}

	d := permissions.Describe(permissions.Capability(name), value)
	switch perms.Query(d) {
	case permissions.Granted:
		return stateGranted
	case permissions.Prompt:
		return statePrompt
	default:
		return stateDenied
	}
}

// writeString answers a guest string query by copying the result of fn
// into the guest buffer named by the stack arguments.
func writeString(mod api.Module, stack []uint64, fn func() (string, error)) int32 {
	bufPtr, bufLen := uint32(stack[0]), uint32(stack[1])

	s, err := fn()
	if err != nil {
		Logger().Debug("guest query refused", zap.Error(err))
		return statusDenied
	}
	if uint32(len(s)) > bufLen {
		return statusTooSmall
	}
	if !mod.Memory().Write(bufPtr, []byte(s)) {
		return statusDenied
	}
	return int32(len(s))
}

func readString(mod api.Module, ptr, length uint32) (string, bool) {
	if length == 0 {
		return "", true
	}
	b, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return "", false
	}
	return string(b), true
}
