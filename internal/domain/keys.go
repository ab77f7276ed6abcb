package domain

// KeyPrefix is the default namespace for every key the service writes to the key-value store.
const KeyPrefix = "garden:"
