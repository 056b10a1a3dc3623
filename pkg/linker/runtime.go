package linker

import "github.com/coldog/jsbld/pkg/compiler"

const (
	registryName = "__jsbld_modules__"
	cacheName    = "__jsbld_module_cache__"
	loaderName   = compiler.LoaderName
)

const header = "(() => {\nvar " + registryName + " = {\n"

const factoryHead = ": function (module, exports, " + loaderName + ") {\n"

const factoryTail = "\n},\n"

// runtime closes the registry and defines the caching loader. The cache entry
// is stored before the factory runs so a circular require sees the partially
// filled exports.
const runtime = `};
var ` + cacheName + ` = {};
function ` + loaderName + `(moduleId) {
  var cached = ` + cacheName + `[moduleId];
  if (cached !== undefined) {
    return cached.exports;
  }
  if (!Object.prototype.hasOwnProperty.call(` + registryName + `, moduleId)) {
    var err = new Error("Cannot find module '" + moduleId + "'");
    err.code = "MODULE_NOT_FOUND";
    throw err;
  }
  var module = (` + cacheName + `[moduleId] = { id: moduleId, exports: {} });
  ` + registryName + `[moduleId].call(module.exports, module, module.exports, ` + loaderName + `);
  return module.exports;
}
`

const footer = "})();\n"
