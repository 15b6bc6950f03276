package launcher

// Minimal hand-assembled WASI command modules. They stand in for the real
// interpreter so the whole boot path runs under wazero in tests without
// shipping a multi-megabyte python.wasm.

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func wasmSection(id byte, contents []byte) []byte {
	return append([]byte{id, byte(len(contents))}, contents...)
}

func wasmModule(sections ...[]byte) []byte {
	out := append([]byte{}, wasmHeader...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func exportStart(funcIdx byte) []byte {
	contents := []byte{0x01, 0x06}
	contents = append(contents, []byte("_start")...)
	return append(contents, 0x00, funcIdx)
}

// exitModule calls wasi proc_exit(code) from _start. Codes must fit a
// single-byte signed LEB128, so keep them below 64 in tests.
func exitModule(code byte) []byte {
	imp := []byte{0x01, 0x16}
	imp = append(imp, []byte("wasi_snapshot_preview1")...)
	imp = append(imp, 0x09)
	imp = append(imp, []byte("proc_exit")...)
	imp = append(imp, 0x00, 0x00)

	return wasmModule(
		wasmSection(0x01, []byte{0x02, 0x60, 0x01, 0x7f, 0x00, 0x60, 0x00, 0x00}), // (i32)->(), ()->()
		wasmSection(0x02, imp),
		wasmSection(0x03, []byte{0x01, 0x01}),
		wasmSection(0x07, exportStart(0x01)),
		wasmSection(0x0a, []byte{0x01, 0x06, 0x00, 0x41, code, 0x10, 0x00, 0x0b}),
	)
}

// returnModule's _start returns without calling proc_exit.
func returnModule() []byte {
	return wasmModule(
		wasmSection(0x01, []byte{0x01, 0x60, 0x00, 0x00}),
		wasmSection(0x03, []byte{0x01, 0x00}),
		wasmSection(0x07, exportStart(0x00)),
		wasmSection(0x0a, []byte{0x01, 0x02, 0x00, 0x0b}),
	)
}

// argcExitModule calls wasi args_sizes_get and then proc_exit(argc), so
// the exit status reports how many argv entries reached the guest.
func argcExitModule() []byte {
	imp := []byte{0x02}
	imp = append(imp, 0x16)
	imp = append(imp, []byte("wasi_snapshot_preview1")...)
	imp = append(imp, 0x0e)
	imp = append(imp, []byte("args_sizes_get")...)
	imp = append(imp, 0x00, 0x00)
	imp = append(imp, 0x16)
	imp = append(imp, []byte("wasi_snapshot_preview1")...)
	imp = append(imp, 0x09)
	imp = append(imp, []byte("proc_exit")...)
	imp = append(imp, 0x00, 0x01)

	exp := []byte{0x02, 0x06}
	exp = append(exp, []byte("_start")...)
	exp = append(exp, 0x00, 0x02, 0x06)
	exp = append(exp, []byte("memory")...)
	exp = append(exp, 0x02, 0x00)

	// _start: args_sizes_get(0, 4); drop errno; proc_exit(load argc from 0)
	body := []byte{
		0x00,
		0x41, 0x00,
		0x41, 0x04,
		0x10, 0x00,
		0x1a,
		0x41, 0x00,
		0x28, 0x02, 0x00,
		0x10, 0x01,
		0x0b,
	}

	return wasmModule(
		wasmSection(0x01, []byte{
			0x03,
			0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // (i32,i32)->i32
			0x60, 0x01, 0x7f, 0x00, // (i32)->()
			0x60, 0x00, 0x00, // ()->()
		}),
		wasmSection(0x02, imp),
		wasmSection(0x03, []byte{0x01, 0x02}),
		wasmSection(0x05, []byte{0x01, 0x00, 0x01}),
		wasmSection(0x07, exp),
		wasmSection(0x0a, append([]byte{0x01, byte(len(body))}, body...)),
	)
}

// trapModule's _start hits an unreachable instruction, the shape of an
// unhandled failure that is not a termination signal.
func trapModule() []byte {
	return wasmModule(
		wasmSection(0x01, []byte{0x01, 0x60, 0x00, 0x00}),
		wasmSection(0x03, []byte{0x01, 0x00}),
		wasmSection(0x07, exportStart(0x00)),
		wasmSection(0x0a, []byte{0x01, 0x03, 0x00, 0x00, 0x0b}),
	)
}
