// Package dom binds browser.Host to the real window object. The binding is
// only compiled for js/wasm; on other platforms the package is empty.
package dom
