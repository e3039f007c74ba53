// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sparkpb

// Fully qualified gRPC method names of spark.connect.SparkConnectService.
const (
	MethodExecutePlan = "/spark.connect.SparkConnectService/ExecutePlan"
	MethodAnalyzePlan = "/spark.connect.SparkConnectService/AnalyzePlan"
	MethodConfig      = "/spark.connect.SparkConnectService/Config"
	MethodInterrupt   = "/spark.connect.SparkConnectService/Interrupt"
)

// UserContext is spark.connect.UserContext.
type UserContext struct {
	UserID   string
	UserName string
}

func (u *UserContext) appendTo(b []byte) []byte {
	b = appendString(b, 1, u.UserID)
	return appendString(b, 2, u.UserName)
}

func (u *UserContext) unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			u.UserID = f.str()
		case 2:
			u.UserName = f.str()
		}
		return nil
	})
}

// ExecutePlanRequest is spark.connect.ExecutePlanRequest. Plan carries an encoded Plan.
type ExecutePlanRequest struct {
	SessionID                         string
	UserContext                       UserContext
	Plan                              []byte
	ClientType                        string
	OperationID                       string
	Tags                              []string
	ClientObservedServerSideSessionID string
}

func (r *ExecutePlanRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	b = appendMessage(b, 2, &r.UserContext)
	b = appendBytes(b, 3, r.Plan)
	b = appendString(b, 4, r.ClientType)
	b = appendString(b, 6, r.OperationID)
	for _, t := range r.Tags {
		b = appendString(b, 7, t)
	}
	b = appendString(b, 8, r.ClientObservedServerSideSessionID)
	return b, nil
}

func (r *ExecutePlanRequest) Unmarshal(b []byte) error {
	*r = ExecutePlanRequest{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			return r.UserContext.unmarshal(f.bytes)
		case 3:
			r.Plan = append([]byte(nil), f.bytes...)
		case 4:
			r.ClientType = f.str()
		case 6:
			r.OperationID = f.str()
		case 7:
			r.Tags = append(r.Tags, f.str())
		case 8:
			r.ClientObservedServerSideSessionID = f.str()
		}
		return nil
	})
}

// ArrowBatch is ExecutePlanResponse.ArrowBatch: one Arrow IPC stream.
type ArrowBatch struct {
	RowCount    int64
	Data        []byte
	StartOffset int64
}

func (a *ArrowBatch) appendTo(b []byte) []byte {
	b = appendInt64(b, 1, a.RowCount)
	b = appendBytes(b, 2, a.Data)
	if a.StartOffset != 0 {
		b = appendInt64(b, 3, a.StartOffset)
	}
	return b
}

// ExecutePlanResponse is spark.connect.ExecutePlanResponse. Response variants the client
// does not consume (metrics, observed metrics, command results) are skipped on decode.
type ExecutePlanResponse struct {
	SessionID           string
	ServerSideSessionID string
	OperationID         string
	ResponseID          string

	ArrowBatch     *ArrowBatch
	ResultComplete bool
	Schema         *DataType
}

func (r *ExecutePlanResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	if r.ArrowBatch != nil {
		b = appendMessage(b, 2, r.ArrowBatch)
	}
	if r.Schema != nil {
		b = appendMessage(b, 7, r.Schema)
	}
	b = appendString(b, 12, r.OperationID)
	b = appendString(b, 13, r.ResponseID)
	if r.ResultComplete {
		b = appendEmpty(b, 14)
	}
	b = appendString(b, 15, r.ServerSideSessionID)
	return b, nil
}

func (r *ExecutePlanResponse) Unmarshal(b []byte) error {
	*r = ExecutePlanResponse{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			r.ArrowBatch = &ArrowBatch{}
			return forEachField(f.bytes, func(a field) error {
				switch a.num {
				case 1:
					r.ArrowBatch.RowCount = a.int64()
				case 2:
					r.ArrowBatch.Data = append([]byte(nil), a.bytes...)
				case 3:
					r.ArrowBatch.StartOffset = a.int64()
				}
				return nil
			})
		case 7:
			r.Schema = &DataType{}
			return r.Schema.Unmarshal(f.bytes)
		case 12:
			r.OperationID = f.str()
		case 13:
			r.ResponseID = f.str()
		case 14:
			r.ResultComplete = true
		case 15:
			r.ServerSideSessionID = f.str()
		}
		return nil
	})
}

// AnalyzePlanRequest is spark.connect.AnalyzePlanRequest limited to the schema and
// spark_version analyses. SchemaPlan carries an encoded Plan.
type AnalyzePlanRequest struct {
	SessionID                         string
	UserContext                       UserContext
	ClientType                        string
	SchemaPlan                        []byte
	SparkVersion                      bool
	ClientObservedServerSideSessionID string
}

func (r *AnalyzePlanRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	b = appendMessage(b, 2, &r.UserContext)
	b = appendString(b, 3, r.ClientType)
	switch {
	case r.SchemaPlan != nil:
		b = appendBytes(b, 4, appendBytes(nil, 1, r.SchemaPlan))
	case r.SparkVersion:
		b = appendEmpty(b, 10)
	}
	b = appendString(b, 17, r.ClientObservedServerSideSessionID)
	return b, nil
}

func (r *AnalyzePlanRequest) Unmarshal(b []byte) error {
	*r = AnalyzePlanRequest{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			return r.UserContext.unmarshal(f.bytes)
		case 3:
			r.ClientType = f.str()
		case 4:
			r.SchemaPlan = []byte{}
			return forEachField(f.bytes, func(s field) error {
				if s.num == 1 {
					r.SchemaPlan = append([]byte(nil), s.bytes...)
				}
				return nil
			})
		case 10:
			r.SparkVersion = true
		case 17:
			r.ClientObservedServerSideSessionID = f.str()
		}
		return nil
	})
}

// AnalyzePlanResponse is spark.connect.AnalyzePlanResponse limited to schema and
// spark_version results.
type AnalyzePlanResponse struct {
	SessionID           string
	ServerSideSessionID string
	Schema              *DataType
	SparkVersion        string
}

func (r *AnalyzePlanResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	if r.Schema != nil {
		b = appendBytes(b, 2, appendMessage(nil, 1, r.Schema))
	}
	if r.SparkVersion != "" {
		b = appendBytes(b, 8, appendString(nil, 1, r.SparkVersion))
	}
	b = appendString(b, 15, r.ServerSideSessionID)
	return b, nil
}

func (r *AnalyzePlanResponse) Unmarshal(b []byte) error {
	*r = AnalyzePlanResponse{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			return forEachField(f.bytes, func(s field) error {
				if s.num == 1 {
					r.Schema = &DataType{}
					return r.Schema.Unmarshal(s.bytes)
				}
				return nil
			})
		case 8:
			return forEachField(f.bytes, func(v field) error {
				if v.num == 1 {
					r.SparkVersion = v.str()
				}
				return nil
			})
		case 15:
			r.ServerSideSessionID = f.str()
		}
		return nil
	})
}

// KeyValue is spark.connect.KeyValue; a nil Value means unset.
type KeyValue struct {
	Key   string
	Value *string
}

func (kv *KeyValue) appendTo(b []byte) []byte {
	b = appendString(b, 1, kv.Key)
	return appendOptionalString(b, 2, kv.Value)
}

func (kv *KeyValue) unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			kv.Key = f.str()
		case 2:
			v := f.str()
			kv.Value = &v
		}
		return nil
	})
}

// ConfigRequest is spark.connect.ConfigRequest limited to the set and get operations.
// Set takes precedence when both are populated.
type ConfigRequest struct {
	SessionID                         string
	UserContext                       UserContext
	ClientType                        string
	Set                               []KeyValue
	Get                               []string
	ClientObservedServerSideSessionID string
}

func (r *ConfigRequest) Marshal() ([]byte, error) {
	var op []byte
	if len(r.Set) > 0 {
		var set []byte
		for i := range r.Set {
			set = appendMessage(set, 1, &r.Set[i])
		}
		op = appendBytes(op, 1, set)
	} else {
		var get []byte
		for _, k := range r.Get {
			get = appendString(get, 1, k)
		}
		op = appendBytes(op, 2, get)
	}

	var b []byte
	b = appendString(b, 1, r.SessionID)
	b = appendMessage(b, 2, &r.UserContext)
	b = appendBytes(b, 3, op)
	b = appendString(b, 4, r.ClientType)
	b = appendString(b, 5, r.ClientObservedServerSideSessionID)
	return b, nil
}

func (r *ConfigRequest) Unmarshal(b []byte) error {
	*r = ConfigRequest{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			return r.UserContext.unmarshal(f.bytes)
		case 3:
			return forEachField(f.bytes, func(op field) error {
				return forEachField(op.bytes, func(item field) error {
					if item.num != 1 {
						return nil
					}
					switch op.num {
					case 1:
						var kv KeyValue
						if err := kv.unmarshal(item.bytes); err != nil {
							return err
						}
						r.Set = append(r.Set, kv)
					case 2:
						r.Get = append(r.Get, item.str())
					}
					return nil
				})
			})
		case 4:
			r.ClientType = f.str()
		case 5:
			r.ClientObservedServerSideSessionID = f.str()
		}
		return nil
	})
}

// ConfigResponse is spark.connect.ConfigResponse.
type ConfigResponse struct {
	SessionID           string
	ServerSideSessionID string
	Pairs               []KeyValue
	Warnings            []string
}

func (r *ConfigResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	for i := range r.Pairs {
		b = appendMessage(b, 2, &r.Pairs[i])
	}
	for _, w := range r.Warnings {
		b = appendString(b, 3, w)
	}
	b = appendString(b, 4, r.ServerSideSessionID)
	return b, nil
}

func (r *ConfigResponse) Unmarshal(b []byte) error {
	*r = ConfigResponse{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			var kv KeyValue
			if err := kv.unmarshal(f.bytes); err != nil {
				return err
			}
			r.Pairs = append(r.Pairs, kv)
		case 3:
			r.Warnings = append(r.Warnings, f.str())
		case 4:
			r.ServerSideSessionID = f.str()
		}
		return nil
	})
}

// InterruptType is spark.connect.InterruptRequest.InterruptType.
type InterruptType int32

const (
	InterruptUnspecified InterruptType = 0
	InterruptAll         InterruptType = 1
	InterruptTag         InterruptType = 2
	InterruptOperationID InterruptType = 3
)

// InterruptRequest is spark.connect.InterruptRequest.
type InterruptRequest struct {
	SessionID                         string
	UserContext                       UserContext
	ClientType                        string
	Type                              InterruptType
	OperationTag                      string
	OperationID                       string
	ClientObservedServerSideSessionID string
}

func (r *InterruptRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	b = appendMessage(b, 2, &r.UserContext)
	b = appendString(b, 3, r.ClientType)
	if r.Type != InterruptUnspecified {
		b = appendVarint(b, 4, uint64(r.Type))
	}
	b = appendString(b, 5, r.OperationTag)
	b = appendString(b, 6, r.OperationID)
	b = appendString(b, 7, r.ClientObservedServerSideSessionID)
	return b, nil
}

func (r *InterruptRequest) Unmarshal(b []byte) error {
	*r = InterruptRequest{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			return r.UserContext.unmarshal(f.bytes)
		case 3:
			r.ClientType = f.str()
		case 4:
			r.Type = InterruptType(f.int32())
		case 5:
			r.OperationTag = f.str()
		case 6:
			r.OperationID = f.str()
		case 7:
			r.ClientObservedServerSideSessionID = f.str()
		}
		return nil
	})
}

// InterruptResponse is spark.connect.InterruptResponse.
type InterruptResponse struct {
	SessionID           string
	InterruptedIDs      []string
	ServerSideSessionID string
}

func (r *InterruptResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.SessionID)
	for _, id := range r.InterruptedIDs {
		b = appendString(b, 2, id)
	}
	b = appendString(b, 3, r.ServerSideSessionID)
	return b, nil
}

func (r *InterruptResponse) Unmarshal(b []byte) error {
	*r = InterruptResponse{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			r.SessionID = f.str()
		case 2:
			r.InterruptedIDs = append(r.InterruptedIDs, f.str())
		case 3:
			r.ServerSideSessionID = f.str()
		}
		return nil
	})
}
