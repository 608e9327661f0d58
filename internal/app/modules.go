package app

import (
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/arith"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/envvars"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/httpclient"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/print"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the pipe binary.
var coreModules = []registry.Module{
	&arith.Module{},
	&envvars.Module{},
	&httpclient.Module{},
	&print.Module{},
	&socketio.Module{},
}
