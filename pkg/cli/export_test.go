package cli

var ApplySeed = applySeed
