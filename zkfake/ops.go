package zkfake

import (
	zk "github.com/QuangTung97/zkdual"
)

// call runs op under the store lock and queues its outcome for callback.
func call[R any](s *Session, callback func(resp R, err error), op func() (R, error)) error {
	st := s.store
	st.mut.Lock()
	defer st.mut.Unlock()

	if s.nextReject != nil {
		err := s.nextReject
		s.nextReject = nil
		return err
	}
	if !s.aliveLocked() {
		return zk.CodeSessionExpired
	}

	var resp R
	var err error

	switch {
	case s.nextFailure != nil:
		err = s.nextFailure
		s.nextFailure = nil
	case s.state == zk.StateDisconnected:
		err = zk.CodeConnectionLoss
	default:
		resp, err = op()
	}

	s.enqueue(func() {
		if callback != nil {
			callback(resp, err)
		}
	})
	return nil
}

func (s *Session) Create(
	path string, data []byte, flags int32, acl []zk.ACL,
	callback func(resp zk.CreateResponse, err error),
) error {
	if err := zk.ValidatePath(path, flags&zk.FlagSequence != 0); err != nil {
		return err
	}
	return call(s, callback, func() (zk.CreateResponse, error) {
		created, err := s.store.create(s, path, data, flags, acl)
		if err != nil {
			return zk.CreateResponse{}, err
		}
		return zk.CreateResponse{Zxid: s.store.zxid, Path: created}, nil
	})
}

func (s *Session) Get(path string, watch bool, callback func(resp zk.GetResponse, err error)) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.GetResponse, error) {
		data, stat, err := s.store.get(s, path, watch)
		if err != nil {
			return zk.GetResponse{}, err
		}
		return zk.GetResponse{Zxid: s.store.zxid, Data: data, Stat: stat}, nil
	})
}

func (s *Session) Exists(path string, watch bool, callback func(resp zk.ExistsResponse, err error)) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.ExistsResponse, error) {
		stat, err := s.store.exists(s, path, watch)
		if err != nil {
			return zk.ExistsResponse{}, err
		}
		return zk.ExistsResponse{Zxid: s.store.zxid, Stat: stat}, nil
	})
}

func (s *Session) Set(path string, data []byte, version int32, callback func(resp zk.SetResponse, err error)) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.SetResponse, error) {
		stat, err := s.store.set(s, path, data, version)
		if err != nil {
			return zk.SetResponse{}, err
		}
		return zk.SetResponse{Zxid: s.store.zxid, Stat: stat}, nil
	})
}

func (s *Session) Delete(path string, version int32, callback func(resp zk.DeleteResponse, err error)) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.DeleteResponse, error) {
		if err := s.store.delete(s, path, version); err != nil {
			return zk.DeleteResponse{}, err
		}
		return zk.DeleteResponse{Zxid: s.store.zxid}, nil
	})
}

func (s *Session) Children(path string, watch bool, callback func(resp zk.ChildrenResponse, err error)) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.ChildrenResponse, error) {
		children, stat, err := s.store.children(s, path, watch)
		if err != nil {
			return zk.ChildrenResponse{}, err
		}
		return zk.ChildrenResponse{Zxid: s.store.zxid, Children: children, Stat: stat}, nil
	})
}

func (s *Session) GetACL(path string, callback func(resp zk.GetACLResponse, err error)) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.GetACLResponse, error) {
		acl, stat, err := s.store.getACL(path)
		if err != nil {
			return zk.GetACLResponse{}, err
		}
		return zk.GetACLResponse{Zxid: s.store.zxid, ACL: acl, Stat: stat}, nil
	})
}

func (s *Session) SetACL(
	path string, acl []zk.ACL, version int32,
	callback func(resp zk.SetACLResponse, err error),
) error {
	if err := zk.ValidatePath(path, false); err != nil {
		return err
	}
	return call(s, callback, func() (zk.SetACLResponse, error) {
		stat, err := s.store.setACL(s, path, acl, version)
		if err != nil {
			return zk.SetACLResponse{}, err
		}
		return zk.SetACLResponse{Zxid: s.store.zxid, Stat: stat}, nil
	})
}

func (s *Session) AddAuth(scheme string, auth []byte, callback func(resp zk.AddAuthResponse, err error)) error {
	return call(s, callback, func() (zk.AddAuthResponse, error) {
		if err := s.addAuth(scheme, auth); err != nil {
			return zk.AddAuthResponse{}, err
		}
		return zk.AddAuthResponse{Zxid: s.store.zxid}, nil
	})
}
