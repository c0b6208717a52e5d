//go:build js && wasm

// Command wasm exposes validation to a JavaScript host. Schemas, instances
// and results cross the boundary as JSON text.
//
//	jsv.validate(schemaJSON, instanceJSON, maskValues?) -> responseJSON
//	jsv.compile(schemaJSON, maskValues?) -> {id, validate(instanceJSON), release()} | {response} | {error}
//	jsv.codes() -> [code...]
package main

import (
	"errors"
	"slices"
	"syscall/js"

	"github.com/antoniopresto/wasm-validator/internal/boundary"
	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
	"github.com/antoniopresto/wasm-validator/internal/fs"
	"github.com/antoniopresto/wasm-validator/internal/registry"
	"github.com/antoniopresto/wasm-validator/internal/validator"
)

type host struct {
	opts        []diagnostics.Option
	defaultMask bool
	// One registry per mask setting, since the setting is compiled in.
	schemas map[bool]*registry.Registry
}

func newHost(cfg *config.Config) *host {
	h := &host{
		opts:        cfg.DiagnosticsOptions(),
		defaultMask: cfg.MaskValues,
		schemas:     make(map[bool]*registry.Registry),
	}
	for _, mask := range []bool{false, true} {
		opts := append(cfg.DiagnosticsOptions(), diagnostics.WithMaskValues(mask))
		h.schemas[mask] = registry.New(cfg.Server.CacheSize, opts...)
	}
	return h
}

func (h *host) mask(args []js.Value, i int) bool {
	if len(args) > i && args[i].Type() == js.TypeBoolean {
		return args[i].Bool()
	}
	return h.defaultMask
}

func (h *host) validate(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return string(boundary.EncodeError(errors.New("validate needs a schema and an instance")))
	}
	schema, err := boundary.DecodeJSON(boundary.SubjectSchema, []byte(args[0].String()))
	if err != nil {
		return string(boundary.EncodeError(err))
	}
	instance, err := boundary.DecodeJSON(boundary.SubjectInstance, []byte(args[1].String()))
	if err != nil {
		return string(boundary.EncodeError(err))
	}

	opts := append(slices.Clip(h.opts), diagnostics.WithMaskValues(h.mask(args, 2)))
	return encode(diagnostics.Validate(schema, instance, opts...))
}

func (h *host) compile(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorObject(errors.New("compile needs a schema"))
	}
	schema, err := boundary.DecodeJSON(boundary.SubjectSchema, []byte(args[0].String()))
	if err != nil {
		return errorObject(err)
	}

	key, v, err := h.schemas[h.mask(args, 1)].Add(schema)
	if err != nil {
		if _, ok := diagnostics.AsIssues(err); ok {
			return map[string]any{"response": encode(err)}
		}
		return errorObject(err)
	}

	validate := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return string(boundary.EncodeError(errors.New("validate needs an instance")))
		}
		instance, dErr := boundary.DecodeJSON(boundary.SubjectInstance, []byte(args[0].String()))
		if dErr != nil {
			return string(boundary.EncodeError(dErr))
		}
		return encode(v.Validate(instance))
	})
	var release js.Func
	release = js.FuncOf(func(js.Value, []js.Value) any {
		validate.Release()
		release.Release()
		return nil
	})

	return map[string]any{
		"id":       string(key),
		"validate": validate,
		"release":  release,
	}
}

func encode(err error) string {
	data, eErr := boundary.EncodeResponse(err)
	if eErr != nil {
		return string(boundary.EncodeError(eErr))
	}
	return string(data)
}

func errorObject(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

// hostEnv reads the optional globalThis.jsvEnv object, the browser's
// stand-in for environment variables such as JSV_MASK_VALUES.
func hostEnv() fs.MapEnvProvider {
	env := fs.MapEnvProvider{}
	obj := js.Global().Get("jsvEnv")
	if obj.Type() != js.TypeObject {
		return env
	}
	keys := js.Global().Get("Object").Call("keys", obj)
	for i := range keys.Length() {
		k := keys.Index(i).String()
		env[k] = obj.Get(k).String()
	}
	return env
}

func main() {
	compiler, err := validator.NewSanthoshCompiler(validator.DefaultOptions())
	if err != nil {
		js.Global().Get("console").Call("error", err.Error())
		return
	}
	cfg, err := config.FromEnv(hostEnv(), compiler)
	if err != nil {
		js.Global().Get("console").Call("error", "jsv: "+err.Error())
		return
	}
	h := newHost(cfg)

	js.Global().Set("jsv", map[string]any{
		"validate": js.FuncOf(h.validate),
		"compile":  js.FuncOf(h.compile),
		"codes": js.FuncOf(func(js.Value, []js.Value) any {
			codes := append(diagnostics.AllCodes(), diagnostics.CodeInvalidSchema)
			out := make([]any, len(codes))
			for i, c := range codes {
				out[i] = string(c)
			}
			return out
		}),
	})

	select {}
}
