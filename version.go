package thursday

const VERSION = "v0.1.0"
